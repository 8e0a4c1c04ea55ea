package config

import (
	"github.com/blues/pas/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Campaign CampaignConfig `mapstructure:"campaign"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 链配置
type ChainConfig struct {
	ChainId    int64  `mapstructure:"chain_id"`    // 链ID
	RpcUrl     string `mapstructure:"rpc_url"`     // RPC节点URL
	PrivateKey string `mapstructure:"private_key"` // 托管钱包私钥
	WethAddr   string `mapstructure:"weth_addr"`   // WETH 合约地址
	MarketAddr string `mapstructure:"market_addr"` // 市场适配器合约地址
	VaultAddr  string `mapstructure:"vault_addr"`  // 份额化金库合约地址
	StartBlock int64  `mapstructure:"start_block"` // 日志监控起始区块
}

// CampaignConfig 活动默认参数，创建活动时未指定则使用这里的值
type CampaignConfig struct {
	EthFeeBps        int64  `mapstructure:"eth_fee_bps"`       // ETH 费用基点
	TokenFeeBps      int64  `mapstructure:"token_fee_bps"`     // 份额费用基点
	TokenScale       int64  `mapstructure:"token_scale"`       // 份额放大倍数
	ResaleMultiplier string `mapstructure:"resale_multiplier"` // 转售底价倍数
	QuorumBps        int64  `mapstructure:"quorum_bps"`        // 转售投票法定基点
	FeeRecipient     string `mapstructure:"fee_recipient"`     // 费用接收地址
	Operator         string `mapstructure:"operator"`          // 应急操作员地址
	OperatorToken    string `mapstructure:"operator_token"`    // 应急接口鉴权令牌
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/pas")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "acquisition")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.chain_id", 1)
	viper.SetDefault("chain.start_block", 0)
	viper.SetDefault("campaign.eth_fee_bps", 250)
	viper.SetDefault("campaign.token_fee_bps", 250)
	viper.SetDefault("campaign.token_scale", 1000)
	viper.SetDefault("campaign.resale_multiplier", "2")
	viper.SetDefault("campaign.quorum_bps", 9000)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
