package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/grabgarden/admin-api/internal/cache"
	"github.com/grabgarden/admin-api/internal/config"
	"github.com/grabgarden/admin-api/internal/constants"
	"github.com/grabgarden/admin-api/internal/logger"
	"github.com/grabgarden/admin-api/internal/models"
	"github.com/grabgarden/admin-api/internal/promo"
	"github.com/grabgarden/admin-api/internal/queue"
	"github.com/grabgarden/admin-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// errRedeemRetry 乐观锁未命中，需要重新读取后重试
var errRedeemRetry = errors.New("promo redeem retry")

const auditPageSize = 200

// CheckoutService 结算侧优惠码服务（预览 / 核销 / 释放）
type CheckoutService struct {
	cfg         config.PromoConfig
	repo        repository.PromoCodeRepository
	usageRepo   repository.PromoCodeUsageRepository
	queueClient *queue.Client
	now         func() time.Time
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(
	cfg config.PromoConfig,
	repo repository.PromoCodeRepository,
	usageRepo repository.PromoCodeUsageRepository,
	queueClient *queue.Client,
) *CheckoutService {
	return &CheckoutService{
		cfg:         cfg,
		repo:        repo,
		usageRepo:   usageRepo,
		queueClient: queueClient,
		now:         time.Now,
	}
}

// PreviewInput 预览输入
type PreviewInput struct {
	Code   string
	UserID uint
	Items  []CartLineInput
}

// RedeemInput 核销输入
type RedeemInput struct {
	Code     string
	UserID   uint
	OrderRef string
	Items    []CartLineInput
}

// Redemption 核销结果
// Result.Applied=false 时未产生核销；Replayed 表示同一订单重复提交，返回的是首次核销金额。
type Redemption struct {
	*PromoEvaluation
	OrderRef string `json:"order_ref"`
	UsageID  uint   `json:"usage_id,omitempty"`
	Replayed bool   `json:"replayed"`
}

// ReleasedUsage 被释放的核销记录
type ReleasedUsage struct {
	PromoCodeID    uint         `json:"promo_code_id"`
	Code           string       `json:"code"`
	UserID         uint         `json:"user_id"`
	DiscountAmount models.Money `json:"discount_amount"`
}

// ReleaseResult 释放结果
type ReleaseResult struct {
	OrderRef string          `json:"order_ref"`
	Released []ReleasedUsage `json:"released"`
}

// Preview 使用快照试算，不写库
func (s *CheckoutService) Preview(ctx context.Context, input PreviewInput) (*PromoEvaluation, error) {
	code, err := NormalizePromoCode(input.Code)
	if err != nil {
		return nil, err
	}
	cart, err := buildCart(input.Items)
	if err != nil {
		return nil, err
	}
	row, err := s.loadSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	used, err := s.userHasUsed(s.usageRepo, row, input.UserID)
	if err != nil {
		return nil, err
	}
	result, err := promo.Evaluate(cart, toPromoCode(row, s.cfg.Location()), promo.Context{
		UserID:          input.UserID,
		Now:             s.now(),
		UserHasUsedCode: used,
	})
	if err != nil {
		logger.Warnw("promo_preview_evaluate_failed", "code", code, "user_id", input.UserID, "error", err)
		return nil, mapEvaluateError(err)
	}
	return newPromoEvaluation(row, result), nil
}

// Redeem 核销优惠码
// 单事务内回源读取、计算并按 used_count 做比较交换；冲突时重试，耗尽返回 ErrPromoRedeemConflict。
func (s *CheckoutService) Redeem(ctx context.Context, input RedeemInput) (*Redemption, error) {
	orderRef, err := normalizeOrderRef(input.OrderRef)
	if err != nil {
		return nil, err
	}
	code, err := NormalizePromoCode(input.Code)
	if err != nil {
		return nil, err
	}
	cart, err := buildCart(input.Items)
	if err != nil {
		return nil, err
	}

	attempts := s.cfg.RedeemMaxRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		redemption, err := s.redeemOnce(code, orderRef, input.UserID, cart)
		if errors.Is(err, errRedeemRetry) {
			logger.Debugw("promo_redeem_retry", "code", code, "order_ref", orderRef, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		if redemption.Result.Applied && !redemption.Replayed {
			s.afterRedeem(ctx, redemption, input.UserID)
		}
		return redemption, nil
	}
	logger.Warnw("promo_redeem_conflict", "code", code, "order_ref", orderRef, "attempts", attempts)
	return nil, ErrPromoRedeemConflict
}

func (s *CheckoutService) redeemOnce(code, orderRef string, userID uint, cart promo.Cart) (*Redemption, error) {
	var redemption *Redemption
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		codeRepo := s.repo.WithTx(tx)
		usageRepo := s.usageRepo.WithTx(tx)

		row, err := codeRepo.GetByCode(code)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrPromoCodeNotFound
		}

		existing, err := usageRepo.GetByOrderRef(row.ID, orderRef)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.UserID != userID {
				return ErrPromoOrderRefConflict
			}
			redemption = replayedRedemption(row, existing, cart)
			return nil
		}

		used, err := s.userHasUsed(usageRepo, row, userID)
		if err != nil {
			return err
		}
		result, err := promo.Evaluate(cart, toPromoCode(row, s.cfg.Location()), promo.Context{
			UserID:          userID,
			Now:             s.now(),
			UserHasUsedCode: used,
		})
		if err != nil {
			return mapEvaluateError(err)
		}
		redemption = &Redemption{PromoEvaluation: newPromoEvaluation(row, result), OrderRef: orderRef}
		if !result.Applied {
			return nil
		}

		ok, err := codeRepo.CompareAndIncrementUsedCount(row.ID, row.UsedCount)
		if err != nil {
			return err
		}
		if !ok {
			return errRedeemRetry
		}
		usage := &models.PromoCodeUsage{
			PromoCodeID:    row.ID,
			UserID:         userID,
			OrderRef:       orderRef,
			DiscountAmount: models.NewMoneyFromDecimal(result.DiscountAmount),
		}
		if err := usageRepo.Create(usage); err != nil {
			return err
		}
		redemption.UsageID = usage.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

func replayedRedemption(row *models.PromoCode, usage *models.PromoCodeUsage, cart promo.Cart) *Redemption {
	subtotal := cart.Subtotal().Round(2)
	// 重放时购物车可能已变化，折扣不超过当前小计
	discount := decimal.Max(decimal.Zero, decimal.Min(usage.DiscountAmount.Decimal, subtotal))
	return &Redemption{
		PromoEvaluation: newPromoEvaluation(row, promo.Result{
			Applied:        true,
			Subtotal:       subtotal,
			DiscountAmount: discount,
			FinalTotal:     subtotal.Sub(discount),
		}),
		OrderRef: usage.OrderRef,
		UsageID:  usage.ID,
		Replayed: true,
	}
}

func (s *CheckoutService) afterRedeem(ctx context.Context, redemption *Redemption, userID uint) {
	logger.Infow("promo_code_redeemed",
		"promo_code_id", redemption.PromoCodeID,
		"code", redemption.Code,
		"user_id", userID,
		"order_ref", redemption.OrderRef,
		"discount_amount", redemption.Result.DiscountAmount.StringFixed(2),
	)
	if err := cache.DelPromoCode(ctx, redemption.Code); err != nil {
		logger.Warnw("promo_code_cache_invalidate_failed", "code", redemption.Code, "error", err)
	}
	payload := queue.PromoUsageRecordedPayload{
		PromoCodeID:    redemption.PromoCodeID,
		Code:           redemption.Code,
		UserID:         userID,
		OrderRef:       redemption.OrderRef,
		Action:         constants.PromoUsageActionRedeem,
		DiscountAmount: redemption.Result.DiscountAmount.StringFixed(2),
	}
	if err := s.queueClient.EnqueuePromoUsageRecorded(payload); err != nil {
		logger.Warnw("promo_usage_enqueue_failed", "order_ref", redemption.OrderRef, "action", payload.Action, "error", err)
	}
}

// Release 订单取消后释放当前用户的核销记录并回退 used_count
func (s *CheckoutService) Release(ctx context.Context, orderRef string, userID uint) (*ReleaseResult, error) {
	ref, err := normalizeOrderRef(orderRef)
	if err != nil {
		return nil, err
	}

	result := &ReleaseResult{OrderRef: ref}
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		codeRepo := s.repo.WithTx(tx)
		usageRepo := s.usageRepo.WithTx(tx)

		usages, err := usageRepo.ListByOrderRef(ref, userID)
		if err != nil {
			return err
		}
		if len(usages) == 0 {
			return ErrPromoUsageNotFound
		}

		ids := make([]uint, 0, len(usages))
		perCode := make(map[uint]int)
		for _, usage := range usages {
			ids = append(ids, usage.ID)
			perCode[usage.PromoCodeID]++
		}
		if err := usageRepo.DeleteByIDs(ids); err != nil {
			return err
		}
		codeIDs := make([]uint, 0, len(perCode))
		for id := range perCode {
			codeIDs = append(codeIDs, id)
		}
		sort.Slice(codeIDs, func(i, j int) bool { return codeIDs[i] < codeIDs[j] })

		codes := make(map[uint]string, len(codeIDs))
		for _, id := range codeIDs {
			if err := codeRepo.DecrementUsedCount(id, perCode[id]); err != nil {
				return err
			}
			row, err := codeRepo.GetByID(id)
			if err != nil {
				return err
			}
			if row != nil {
				codes[id] = row.Code
			}
		}
		for _, usage := range usages {
			result.Released = append(result.Released, ReleasedUsage{
				PromoCodeID:    usage.PromoCodeID,
				Code:           codes[usage.PromoCodeID],
				UserID:         usage.UserID,
				DiscountAmount: usage.DiscountAmount,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, released := range result.Released {
		logger.Infow("promo_code_released",
			"promo_code_id", released.PromoCodeID,
			"code", released.Code,
			"user_id", released.UserID,
			"order_ref", ref,
		)
		if err := cache.DelPromoCode(ctx, released.Code); err != nil {
			logger.Warnw("promo_code_cache_invalidate_failed", "code", released.Code, "error", err)
		}
		payload := queue.PromoUsageRecordedPayload{
			PromoCodeID:    released.PromoCodeID,
			Code:           released.Code,
			UserID:         released.UserID,
			OrderRef:       ref,
			Action:         constants.PromoUsageActionRelease,
			DiscountAmount: released.DiscountAmount.String(),
		}
		if err := s.queueClient.EnqueuePromoUsageRecorded(payload); err != nil {
			logger.Warnw("promo_usage_enqueue_failed", "order_ref", ref, "action", payload.Action, "error", err)
		}
	}
	return result, nil
}

// UsageDrift used_count 与核销记录数不一致的优惠码
type UsageDrift struct {
	PromoCodeID uint
	Code        string
	UsedCount   int
	UsageRows   int64
}

// AuditUsageDrift 巡检 used_count 与核销记录是否一致，只记录日志不修复
func (s *CheckoutService) AuditUsageDrift(ctx context.Context) ([]UsageDrift, error) {
	var drifts []UsageDrift
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return drifts, err
		}
		rows, total, err := s.repo.List(repository.PromoCodeListFilter{Page: page, PageSize: auditPageSize})
		if err != nil {
			return drifts, err
		}
		if len(rows) == 0 {
			break
		}
		ids := make([]uint, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		counts, err := s.usageRepo.CountByPromoCodes(ids)
		if err != nil {
			return drifts, err
		}
		for _, row := range rows {
			if int64(row.UsedCount) == counts[row.ID] {
				continue
			}
			drift := UsageDrift{PromoCodeID: row.ID, Code: row.Code, UsedCount: row.UsedCount, UsageRows: counts[row.ID]}
			logger.Warnw("promo_usage_drift",
				"promo_code_id", drift.PromoCodeID,
				"code", drift.Code,
				"used_count", drift.UsedCount,
				"usage_rows", drift.UsageRows,
			)
			drifts = append(drifts, drift)
		}
		if int64(page*auditPageSize) >= total {
			break
		}
	}
	return drifts, nil
}

// loadSnapshot 读取优惠码快照：先查缓存，未命中回源并回写
func (s *CheckoutService) loadSnapshot(ctx context.Context, code string) (*models.PromoCode, error) {
	if row, hit, err := cache.GetPromoCode(ctx, code); err != nil {
		logger.Warnw("promo_code_cache_get_failed", "code", code, "error", err)
	} else if hit && row != nil {
		return row, nil
	}

	row, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrPromoCodeNotFound
	}
	if err := cache.SetPromoCode(ctx, row, s.cfg.CacheTTL()); err != nil {
		logger.Warnw("promo_code_cache_set_failed", "code", code, "error", err)
	}
	return row, nil
}

func (s *CheckoutService) userHasUsed(usageRepo repository.PromoCodeUsageRepository, row *models.PromoCode, userID uint) (bool, error) {
	if !row.OneTimeUsePerUser || userID == 0 {
		return false, nil
	}
	count, err := usageRepo.CountByUser(row.ID, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func normalizeOrderRef(raw string) (string, error) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return "", ErrOrderRefRequired
	}
	if len(ref) > constants.OrderRefMaxLength {
		return "", fmt.Errorf("%w: too long", ErrOrderRefRequired)
	}
	return ref, nil
}
