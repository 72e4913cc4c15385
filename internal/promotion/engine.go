package promotion

import (
	"fmt"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/logger"
)

// Engine 促销评估引擎
// 对一份购物车快照按优先级降序评估全部定义，命中促销累计叠加；
// 单个促销的失败只记录日志并跳过，绝不中断整批评估
type Engine struct {
	registry *Registry
}

// NewEngine 创建引擎
func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	return &Engine{registry: registry}
}

// Registry 返回策略注册表
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Evaluate 以当前时间评估全部定义
func (e *Engine) Evaluate(lines []*CartLine, defs []*Definition, user *MembershipInfo) []*Outcome {
	return e.EvaluateAt(lines, defs, user, time.Now())
}

// EvaluateAt 在指定时间点评估全部定义
// defs 应已按优先级降序、ID 升序排列；返回命中的结果列表
func (e *Engine) EvaluateAt(lines []*CartLine, defs []*Definition, user *MembershipInfo, now time.Time) []*Outcome {
	results := make([]*Outcome, 0, len(defs))
	for _, def := range defs {
		if !def.ActiveAt(now) {
			continue
		}
		if def.RequiresMembership {
			if user == nil || !user.IsMember {
				continue
			}
			if !def.AllowsTier(user.Tier) {
				continue
			}
		}
		if def.UsageLimit > 0 && def.UsageCount >= def.UsageLimit {
			continue
		}
		if def.UsageLimitPerUser > 0 && user != nil && user.UsedCount(def.ID) >= def.UsageLimitPerUser {
			continue
		}

		strategy := e.registry.Get(def.Type)
		if strategy == nil {
			logger.Warnw("promotion_strategy_missing", "promotion_id", def.ID, "type", def.Type)
			continue
		}
		if !strategy.IsEligible(lines, user) {
			continue
		}

		outcome, err := e.applyStrategy(strategy, lines, def, user)
		if err != nil {
			logger.Errorw("promotion_apply_failed", "promotion_id", def.ID, "type", def.Type, "error", err)
			continue
		}
		if outcome != nil && outcome.Applied {
			results = append(results, outcome)
		}
	}
	return results
}

// ApplyOne 对单个促销做权威评估，返回带原因的结果（用于试算/诊断）
func (e *Engine) ApplyOne(lines []*CartLine, def *Definition, user *MembershipInfo, now time.Time) *Outcome {
	if !def.ActiveAt(now) {
		return notApplied(def, "Promotion is not active")
	}
	if def.RequiresMembership {
		if user == nil || !user.IsMember {
			return notApplied(def, "This promotion requires membership")
		}
		if !def.AllowsTier(user.Tier) {
			return notApplied(def, "Your membership tier is not eligible for this promotion")
		}
	}
	strategy := e.registry.Get(def.Type)
	if strategy == nil {
		return notApplied(def, "Promotion type not supported")
	}
	outcome, err := e.applyStrategy(strategy, lines, def, user)
	if err != nil {
		logger.Errorw("promotion_apply_failed", "promotion_id", def.ID, "type", def.Type, "error", err)
		return notApplied(def, "Error applying promotion: "+err.Error())
	}
	return outcome
}

// applyStrategy 在本地失败边界内执行策略，panic 转为错误
func (e *Engine) applyStrategy(strategy Strategy, lines []*CartLine, def *Definition, user *MembershipInfo) (outcome *Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = nil
			err = fmt.Errorf("strategy %s panicked: %v", strategy.Type(), r)
		}
	}()
	return strategy.Apply(lines, def, user)
}
