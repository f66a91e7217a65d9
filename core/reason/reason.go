package reason

import (
	"errors"
	"fmt"
)

// Kind 错误族
type Kind int

const (
	// KindStatusConflict 玩家侧可修正的冲突：手里没有这张牌、还没轮到你、鸣牌牌面不符
	KindStatusConflict Kind = iota + 1
	// KindInvalidOperation 当前状态不接受该操作
	KindInvalidOperation
)

func (k Kind) String() string {
	switch k {
	case KindStatusConflict:
		return "StatusConflict"
	case KindInvalidOperation:
		return "InvalidOperation"
	}
	return "Unknown"
}

// Code 消息码，客户端按码做提示
type Code string

// 状态冲突
const (
	CodeTileNotInHand          Code = "TILE_NOT_IN_HAND"
	CodeNotInTurnToDiscard     Code = "NOT_IN_TURN_TO_DISCARD"
	CodePonWithDifferentFaces  Code = "PON_WITH_DIFFERENT_FACES"
	CodeKongWithDifferentFaces Code = "KONG_WITH_DIFFERENT_FACES"
	CodeChiNotARun             Code = "CHI_NOT_A_RUN"
	CodeAlreadyDrawn           Code = "ALREADY_DRAWN"
	CodeNoDrawnTile            Code = "NO_DRAWN_TILE"
	CodeClaimTileMismatch      Code = "CLAIM_TILE_MISMATCH"
	CodeNotWinningHand         Code = "NOT_A_WINNING_HAND"
	CodeFuriten                Code = "FURITEN"
	CodeRiichiLocked           Code = "RIICHI_LOCKED"
	CodeRiichiNotAllowed       Code = "RIICHI_NOT_ALLOWED"
	CodeSwapCall               Code = "SWAP_CALL"
	CodeNoMatchingPon          Code = "NO_MATCHING_PON"
	CodeDeadWallExhausted      Code = "DEAD_WALL_EXHAUSTED"
	CodeNotNineTerminals       Code = "NOT_NINE_TERMINALS"
)

// 非法操作
const (
	CodeUnexpectedAction Code = "UNEXPECTED_ACTION"
	CodeNotInTurn        Code = "NOT_IN_TURN"
	CodeAlreadyReacted   Code = "ALREADY_REACTED"
	CodeAlreadyResolved  Code = "ALREADY_RESOLVED"
	CodeChiNotFromLeft   Code = "CHI_ONLY_FROM_LEFT"
	CodeRoundOver        Code = "ROUND_OVER"
	CodeAlreadyStarted   Code = "ALREADY_STARTED"
)

// Reason 一次 Apply 被拒绝的原因，拒绝时局面不发生任何变化
type Reason struct {
	Kind    Kind
	Code    Code
	Message string
	Phase   string // 被拒绝时的局面状态
	Action  string // 被拒绝的操作
	Cause   error
}

func StatusConflict(code Code, format string, args ...any) *Reason {
	return &Reason{Kind: KindStatusConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func InvalidOperation(code Code, phase, action string, format string, args ...any) *Reason {
	return &Reason{
		Kind:    KindInvalidOperation,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Phase:   phase,
		Action:  action,
	}
}

func (r *Reason) Error() string {
	msg := fmt.Sprintf("%s[%s]: %s", r.Kind, r.Code, r.Message)
	if r.Phase != "" || r.Action != "" {
		msg += fmt.Sprintf(" (state=%s, action=%s)", r.Phase, r.Action)
	}
	if r.Cause != nil {
		msg += ": " + r.Cause.Error()
	}
	return msg
}

func (r *Reason) Unwrap() error { return r.Cause }

// Is 同族同码即相等；哨兵不带码时匹配整个错误族
func (r *Reason) Is(target error) bool {
	t, ok := target.(*Reason)
	if !ok {
		return false
	}
	if t.Kind != 0 && t.Kind != r.Kind {
		return false
	}
	return t.Code == "" || t.Code == r.Code
}

// WithCause 返回带底层原因的副本
func (r *Reason) WithCause(err error) *Reason {
	c := *r
	c.Cause = err
	return &c
}

// WithState 返回附带状态与操作的副本
func (r *Reason) WithState(phase, action string) *Reason {
	c := *r
	c.Phase = phase
	c.Action = action
	return &c
}

// CodeOf 取出错误链上的消息码
func CodeOf(err error) Code {
	var r *Reason
	if errors.As(err, &r) {
		return r.Code
	}
	return ""
}

var (
	ErrStatusConflict   = &Reason{Kind: KindStatusConflict}
	ErrInvalidOperation = &Reason{Kind: KindInvalidOperation}

	ErrTileNotInHand         = &Reason{Kind: KindStatusConflict, Code: CodeTileNotInHand}
	ErrNotInTurnToDiscard    = &Reason{Kind: KindStatusConflict, Code: CodeNotInTurnToDiscard}
	ErrPonWithDifferentFaces = &Reason{Kind: KindStatusConflict, Code: CodePonWithDifferentFaces}
	ErrAlreadyDrawn          = &Reason{Kind: KindStatusConflict, Code: CodeAlreadyDrawn}
	ErrNotWinningHand        = &Reason{Kind: KindStatusConflict, Code: CodeNotWinningHand}
	ErrAlreadyReacted        = &Reason{Kind: KindInvalidOperation, Code: CodeAlreadyReacted}
	ErrAlreadyResolved       = &Reason{Kind: KindInvalidOperation, Code: CodeAlreadyResolved}
	ErrRoundOver             = &Reason{Kind: KindInvalidOperation, Code: CodeRoundOver}
)
