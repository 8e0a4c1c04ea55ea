package logic

import "sync"

// campaignGuard 每个活动一把锁，串行化带外部调用的状态变更操作。
// 外部调用（市场出价、直购目标）可能在返回前反过来打到本服务的接口上，
// TryLock 失败直接报错而不是排队，避免重入调用复用同一笔资金。
type campaignGuard struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newCampaignGuard() *campaignGuard {
	return &campaignGuard{locks: make(map[int64]*sync.Mutex)}
}

func (g *campaignGuard) lockFor(campaignId int64) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[campaignId]
	if !ok {
		l = &sync.Mutex{}
		g.locks[campaignId] = l
	}
	return l
}

// TryAcquire 尝试获取活动锁，已被占用时返回 false
func (g *campaignGuard) TryAcquire(campaignId int64) (release func(), ok bool) {
	l := g.lockFor(campaignId)
	if !l.TryLock() {
		return nil, false
	}
	return l.Unlock, true
}

// 进程级守卫，所有 logic 实例共享
var guard = newCampaignGuard()
