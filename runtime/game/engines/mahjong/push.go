package mahjong

import (
	"sync"

	"github.com/4t145/rahjong/common/log"
	"github.com/4t145/rahjong/core/round"
	"github.com/4t145/rahjong/core/seat"
)

// Notifier 推送通道。在引擎事件循环中同步调用，实现方不能阻塞
type Notifier interface {
	// Push 每次状态变化后推送各家视野
	Push(tableID string, s seat.Seat, sight round.PlayerSight)
	// RoundEnd 牌局结束
	RoundEnd(tableID string, o round.Outcome)
}

// ChanNotifier 每个座位一个只保留最新视野的通道
type ChanNotifier struct {
	sights   [seat.Count]chan round.PlayerSight
	outcomes chan round.Outcome

	mu sync.Mutex
}

// NewChanNotifier outcomes 的缓冲决定了不被消费时能积压多少局结果
func NewChanNotifier(outcomes int) *ChanNotifier {
	n := &ChanNotifier{outcomes: make(chan round.Outcome, outcomes)}
	for i := range n.sights {
		n.sights[i] = make(chan round.PlayerSight, 1)
	}
	return n
}

func (n *ChanNotifier) Sights(s seat.Seat) <-chan round.PlayerSight {
	return n.sights[s]
}

func (n *ChanNotifier) Outcomes() <-chan round.Outcome {
	return n.outcomes
}

// Push 通道满时丢弃旧视野
func (n *ChanNotifier) Push(_ string, s seat.Seat, sight round.PlayerSight) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := n.sights[s]
	for {
		select {
		case ch <- sight:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (n *ChanNotifier) RoundEnd(tableID string, o round.Outcome) {
	select {
	case n.outcomes <- o:
	default:
		log.Warn("牌局 %s 的结果无人接收，丢弃: %s", tableID, o)
	}
}

// LogNotifier 只打日志，用于没有客户端的场合
type LogNotifier struct{}

func (LogNotifier) Push(tableID string, s seat.Seat, sight round.PlayerSight) {
	if sight.AwaitingReaction || sight.ToDiscard == s {
		log.Debug("[%s] 等待 %s: %s v%d", tableID, s, sight.Phase, sight.Version)
	}
}

func (LogNotifier) RoundEnd(tableID string, o round.Outcome) {
	log.Info("[%s] 牌局结束: %s", tableID, o)
}

// Router 按牌桌分发推送，同一个原型克隆出的引擎共用一个 Router
type Router struct {
	tables map[string]Notifier
	mu     sync.RWMutex
}

func NewRouter() *Router {
	return &Router{tables: make(map[string]Notifier)}
}

func (r *Router) Register(tableID string, n Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[tableID] = n
}

func (r *Router) Unregister(tableID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, tableID)
}

func (r *Router) lookup(tableID string) (Notifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.tables[tableID]
	return n, ok
}

// Push 未注册的牌桌直接丢弃，客户端注册后应主动拉取一次视野
func (r *Router) Push(tableID string, s seat.Seat, sight round.PlayerSight) {
	if n, ok := r.lookup(tableID); ok {
		n.Push(tableID, s, sight)
	}
}

func (r *Router) RoundEnd(tableID string, o round.Outcome) {
	if n, ok := r.lookup(tableID); ok {
		n.RoundEnd(tableID, o)
		return
	}
	log.Info("[%s] 牌局结束: %s", tableID, o)
}
