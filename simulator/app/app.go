package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/4t145/rahjong/common/config"
	"github.com/4t145/rahjong/common/log"
	"github.com/4t145/rahjong/core/hand"
	"github.com/4t145/rahjong/core/round"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/runtime/game"
	"github.com/4t145/rahjong/runtime/game/application/service"
	"github.com/4t145/rahjong/runtime/game/application/service/impl"
	"github.com/4t145/rahjong/runtime/game/engines"
	"github.com/4t145/rahjong/runtime/game/engines/mahjong"
)

// EngineOptions 由配置构造引擎参数
func EngineOptions(cfg *config.Config) mahjong.Options {
	return mahjong.Options{
		Seed:            cfg.Simulator.Seed,
		Dealer:          seat.Seat(cfg.Simulator.Dealer),
		DropTimeout:     cfg.Engine.DropTimeout,
		ReactionTimeout: cfg.Engine.ReactionTimeout,
		Compensation:    cfg.Engine.Compensation,
		MaxRoundTime:    cfg.Engine.MaxRoundTime,
		AutoPass:        cfg.Engine.AutoPass,
		QueueSize:       cfg.Engine.QueueSize,
	}
}

// Summary 多局的统计
type Summary struct {
	Rounds int
	Kinds  map[round.EndKind]int
	Wins   [seat.Count]int

	mu sync.Mutex
}

func NewSummary() *Summary {
	return &Summary{Kinds: make(map[round.EndKind]int)}
}

func (s *Summary) Add(o round.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rounds++
	s.Kinds[o.Kind]++
	if o.Kind.IsWin() && o.Winner.Valid() {
		s.Wins[o.Winner]++
	}
}

func (s *Summary) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]round.EndKind, 0, len(s.Kinds))
	for k := range s.Kinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", k, s.Kinds[k]))
	}
	return fmt.Sprintf("%d 局 [%s] 和了 %v", s.Rounds, strings.Join(parts, " "), s.Wins)
}

// Simulator 用自动玩家跑若干局
type Simulator struct {
	identifier string
	manager    *game.TableManager
	tables     service.TableService
	router     *mahjong.Router
}

func NewSimulator(cfg *config.Config, identifier string) (*Simulator, error) {
	manager := game.NewTableManager()
	sim := &Simulator{
		identifier: identifier,
		manager:    manager,
		tables:     impl.NewTableService(manager),
		router:     mahjong.NewRouter(),
	}
	if err := sim.Reload(cfg); err != nil {
		return nil, err
	}
	return sim, nil
}

// Reload 替换引擎原型，之后创建的牌桌使用新的计时参数
func (sim *Simulator) Reload(cfg *config.Config) error {
	proto := mahjong.NewRiichiMahjong4p(EngineOptions(cfg), sim.router)
	return sim.manager.SetEnginePrototype(engines.RiichiMahjong4pEngine, proto)
}

// PlayRound 开一张桌子打一局
func (sim *Simulator) PlayRound(ctx context.Context, n int) (round.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return round.Outcome{}, err
	}
	players := make([]string, 0, seat.Count)
	for _, s := range seat.All(seat.East) {
		players = append(players, fmt.Sprintf("%s-%d-%s", sim.identifier, n, s))
	}
	resp, err := sim.tables.CreateTable(ctx, &service.CreateTableReq{Players: players, EngineType: int32(engines.RiichiMahjong4pEngine)})
	if err != nil {
		return round.Outcome{}, err
	}
	if !resp.Success {
		return round.Outcome{}, fmt.Errorf("创建牌桌失败: %s", resp.Message)
	}
	table, ok := sim.manager.GetTable(resp.TableID)
	if !ok {
		return round.Outcome{}, fmt.Errorf("牌桌 %s 不存在", resp.TableID)
	}
	defer func() {
		if err := sim.manager.DeleteTable(table.ID); err != nil {
			log.Warn("回收牌桌失败: %v", err)
		}
	}()

	pusher := mahjong.NewChanNotifier(1)
	sim.router.Register(table.ID, pusher)
	defer sim.router.Unregister(table.ID)

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range seat.All(seat.East) {
		agent := &Agent{Seat: s, Engine: table.Engine, Sights: pusher.Sights(s)}
		g.Go(func() error { return agent.Play(gctx) })
	}
	g.Go(func() error {
		select {
		case <-table.Engine.Done():
			return nil
		case <-gctx.Done():
			table.Engine.Terminate("模拟器停止")
			return gctx.Err()
		}
	})
	if err := g.Wait(); err != nil {
		return round.Outcome{}, err
	}

	o, ok := table.Engine.Outcome()
	if !ok {
		return round.Outcome{}, fmt.Errorf("牌桌 %s 没有结果", table.ID)
	}
	return o, nil
}

// Play 打 rounds 局，最多 parallel 张桌子同时进行
func (sim *Simulator) Play(ctx context.Context, rounds, parallel int) (*Summary, error) {
	summary := NewSummary()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, parallel))
	for i := range rounds {
		g.Go(func() error {
			o, err := sim.PlayRound(gctx, i)
			if err != nil {
				return err
			}
			summary.Add(o)
			log.Info("第 %d 局: %s", i+1, o)
			return nil
		})
	}
	err := g.Wait()
	return summary, err
}

// Close 回收所有牌桌
func (sim *Simulator) Close() {
	for _, t := range sim.manager.GetAllTables() {
		_ = sim.manager.DeleteTable(t.ID)
	}
}

type result struct {
	summary *Summary
	err     error
}

// Run 打完配置的局数或收到退出信号后返回。reloads 收到的新配置作用于之后创建的牌桌
func Run(ctx context.Context, cfg *config.Config, identifier string, reloads <-chan *config.Config) error {
	searcher, err := hand.NewSearcher(cfg.Searcher.NumCounters, cfg.Searcher.MaxCost)
	if err != nil {
		return fmt.Errorf("创建牌型搜索缓存失败: %w", err)
	}
	prev := hand.SetDefault(searcher)
	defer func() {
		hand.SetDefault(prev)
		searcher.Close()
	}()

	sim, err := NewSimulator(cfg, identifier)
	if err != nil {
		return err
	}
	defer sim.Close()

	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan result, 1)
	go func() {
		summary, err := sim.Play(playCtx, cfg.Simulator.Rounds, cfg.Simulator.Parallel)
		done <- result{summary, err}
	}()

	stop := func() {
		log.Info("正在关闭模拟器...")
		cancel()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		select {
		case r := <-done:
			log.Info("模拟器已关闭: %s", r.summary)
		case <-shutdownCtx.Done():
			log.Warn("关闭模拟器超时（5秒），defer 会确保资源最终被释放")
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(c)

	for {
		select {
		case next := <-reloads:
			log.SetLevel(next.Log.Level)
			if err := sim.Reload(next); err != nil {
				log.Warn("应用新配置失败: %v", err)
				continue
			}
			log.Info("配置已更新，新牌桌出牌时限 %s", next.Engine.DropTimeout)
		case r := <-done:
			if r.err != nil {
				return r.err
			}
			log.Info("模拟结束: %s", r.summary)
			return nil
		case <-ctx.Done():
			stop()
			return nil
		case s := <-c:
			stop()
			if s == syscall.SIGHUP {
				log.Info("挂起信号，模拟器停止")
			} else {
				log.Info("中断信号，模拟器停止")
			}
			return nil
		}
	}
}
