package party

// CampaignStatus 活动状态
type CampaignStatus string

const (
	StatusActive CampaignStatus = "active" // 进行中
	StatusWon    CampaignStatus = "won"    // 竞拍成功
	StatusLost   CampaignStatus = "lost"   // 竞拍失败
)

// Terminal 是否为终止状态（不可逆，claim 可用）
func (s CampaignStatus) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

// CampaignVariant 收购方式
type CampaignVariant string

const (
	VariantAuction CampaignVariant = "auction" // 竞拍模式：通过市场适配器反复加价
	VariantBuy     CampaignVariant = "buy"     // 直购模式：一次性限价外部调用
)

// AllowListKind 白名单类型
type AllowListKind string

const (
	AllowKindBuyTarget AllowListKind = "buy_target" // 直购目标合约
	AllowKindReseller  AllowListKind = "reseller"   // 转售渠道
)
