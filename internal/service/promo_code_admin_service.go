package service

import (
	"context"
	"fmt"
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
)

// PromoCodeAdminService 优惠码管理服务
type PromoCodeAdminService struct {
	cfg         config.PromoConfig
	repo        repository.PromoCodeRepository
	usageRepo   repository.PromoCodeUsageRepository
	productRepo repository.ProductRepository
	queueClient *queue.Client
}

// NewPromoCodeAdminService 创建优惠码管理服务
func NewPromoCodeAdminService(
	cfg config.PromoConfig,
	repo repository.PromoCodeRepository,
	usageRepo repository.PromoCodeUsageRepository,
	productRepo repository.ProductRepository,
	queueClient *queue.Client,
) *PromoCodeAdminService {
	return &PromoCodeAdminService{
		cfg:         cfg,
		repo:        repo,
		usageRepo:   usageRepo,
		productRepo: productRepo,
		queueClient: queueClient,
	}
}

// PromoCodeInput 创建/更新优惠码输入
// 只保留与模式相关的字段，其余字段在保存时清空。
type PromoCodeInput struct {
	Code               string
	Description        string
	Mode               string
	Value              *decimal.Decimal
	MaxDiscount        *decimal.Decimal
	BundleMinItems     *int
	BundlePrice        *decimal.Decimal
	EligibleProductIDs []uint
	MinimumOrder       decimal.Decimal
	ExpiryDate         string
	MaxUses            *int
	OneTimeUsePerUser  bool
	IsActive           *bool
}

// Create 创建优惠码
func (s *PromoCodeAdminService) Create(ctx context.Context, adminID uint, input PromoCodeInput) (*models.PromoCode, error) {
	row := &models.PromoCode{IsActive: true}
	if err := s.applyInput(row, input); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsCode(row.Code, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPromoCodeExists
	}
	row.UsedCount = 0
	if err := s.repo.Create(row); err != nil {
		return nil, err
	}
	logger.Infow("promo_code_created", "promo_code_id", row.ID, "code", row.Code, "mode", row.Mode, "admin_id", adminID)
	s.afterChange(ctx, row, "", constants.PromoCodeChangeCreated, adminID)
	return row, nil
}

// Update 更新优惠码，已使用次数保持不变
func (s *PromoCodeAdminService) Update(ctx context.Context, adminID, id uint, input PromoCodeInput) (*models.PromoCode, error) {
	existing, err := s.getExisting(id)
	if err != nil {
		return nil, err
	}
	prevCode := existing.Code
	if err := s.applyInput(existing, input); err != nil {
		return nil, err
	}
	if existing.Code != prevCode {
		exists, err := s.repo.ExistsCode(existing.Code, existing.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrPromoCodeExists
		}
	}
	if existing.MaxUses != nil && *existing.MaxUses < existing.UsedCount {
		return nil, ErrPromoMaxUsesBelowUsed
	}
	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	logger.Infow("promo_code_updated", "promo_code_id", existing.ID, "code", existing.Code, "admin_id", adminID)
	if prevCode == existing.Code {
		prevCode = ""
	}
	s.afterChange(ctx, existing, prevCode, constants.PromoCodeChangeUpdated, adminID)
	return existing, nil
}

// Delete 软删除优惠码
func (s *PromoCodeAdminService) Delete(ctx context.Context, adminID, id uint) error {
	existing, err := s.getExisting(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	logger.Infow("promo_code_deleted", "promo_code_id", id, "code", existing.Code, "admin_id", adminID)
	s.afterChange(ctx, existing, "", constants.PromoCodeChangeDeleted, adminID)
	return nil
}

// SetActive 启用/停用优惠码
func (s *PromoCodeAdminService) SetActive(ctx context.Context, adminID, id uint, active bool) (*models.PromoCode, error) {
	existing, err := s.getExisting(id)
	if err != nil {
		return nil, err
	}
	if existing.IsActive != active {
		if err := s.repo.SetActive(id, active); err != nil {
			return nil, err
		}
		existing.IsActive = active
		logger.Infow("promo_code_toggled", "promo_code_id", id, "code", existing.Code, "is_active", active, "admin_id", adminID)
		s.afterChange(ctx, existing, "", constants.PromoCodeChangeToggled, adminID)
	}
	return existing, nil
}

// GetByID 获取优惠码详情
func (s *PromoCodeAdminService) GetByID(id uint) (*models.PromoCode, error) {
	return s.getExisting(id)
}

// List 获取优惠码列表
func (s *PromoCodeAdminService) List(filter repository.PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	if mode := strings.ToUpper(strings.TrimSpace(filter.Mode)); mode != "" && !promo.Mode(mode).Valid() {
		return nil, 0, ErrPromoModeInvalid
	}
	return s.repo.List(filter)
}

// ListUsages 获取优惠码核销记录
func (s *PromoCodeAdminService) ListUsages(id uint, page, pageSize int) ([]models.PromoCodeUsage, int64, error) {
	if _, err := s.getExisting(id); err != nil {
		return nil, 0, err
	}
	return s.usageRepo.List(repository.PromoCodeUsageListFilter{
		Page:        page,
		PageSize:    pageSize,
		PromoCodeID: id,
	})
}

// SimulateInput 后台试算输入
type SimulateInput struct {
	Items  []CartLineInput
	UserID uint
	Now    *time.Time
}

// Simulate 用已保存的优惠码试算购物车；配置错误直接返回给管理员
func (s *PromoCodeAdminService) Simulate(id uint, input SimulateInput) (*PromoEvaluation, error) {
	row, err := s.getExisting(id)
	if err != nil {
		return nil, err
	}
	cart, err := buildCart(input.Items)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if input.Now != nil && !input.Now.IsZero() {
		now = *input.Now
	}
	used := false
	if input.UserID > 0 && row.OneTimeUsePerUser {
		count, err := s.usageRepo.CountByUser(row.ID, input.UserID)
		if err != nil {
			return nil, err
		}
		used = count > 0
	}
	result, err := promo.Evaluate(cart, toPromoCode(row, s.cfg.Location()), promo.Context{
		UserID:          input.UserID,
		Now:             now,
		UserHasUsedCode: used,
	})
	if err != nil {
		return nil, mapEvaluateError(err)
	}
	return newPromoEvaluation(row, result), nil
}

func (s *PromoCodeAdminService) getExisting(id uint) (*models.PromoCode, error) {
	if id == 0 {
		return nil, ErrPromoCodeNotFound
	}
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrPromoCodeNotFound
	}
	return row, nil
}

// applyInput 校验输入并写入记录；校验规则与计算器的配置检查一致
func (s *PromoCodeAdminService) applyInput(row *models.PromoCode, input PromoCodeInput) error {
	code, err := NormalizePromoCode(input.Code)
	if err != nil {
		return err
	}
	mode := promo.Mode(strings.ToUpper(strings.TrimSpace(input.Mode)))
	if !mode.Valid() {
		return ErrPromoModeInvalid
	}
	expiry, err := ParseExpiryDate(input.ExpiryDate)
	if err != nil {
		return err
	}
	description := strings.TrimSpace(input.Description)
	if len([]rune(description)) > constants.PromoDescriptionMaxLen {
		return fmt.Errorf("%w: description too long", ErrPromoConfigInvalid)
	}
	if input.MinimumOrder.IsNegative() {
		return fmt.Errorf("%w: minimum order must not be negative", ErrPromoConfigInvalid)
	}
	if input.MaxUses != nil && *input.MaxUses < 0 {
		return fmt.Errorf("%w: max uses must not be negative", ErrPromoConfigInvalid)
	}

	row.Code = code
	row.Description = description
	row.Mode = string(mode)
	row.MinimumOrder = models.NewMoneyFromDecimal(input.MinimumOrder)
	row.ExpiryDate = expiry
	row.MaxUses = input.MaxUses
	row.OneTimeUsePerUser = input.OneTimeUsePerUser
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}

	row.Value, row.MaxDiscount = nil, nil
	row.BundleMinItems, row.BundlePrice = nil, nil
	row.EligibleProductIDs = nil
	switch mode {
	case promo.ModeFlat:
		row.Value = optionalMoney(input.Value)
	case promo.ModePercent:
		row.Value = optionalMoney(input.Value)
		row.MaxDiscount = optionalMoney(input.MaxDiscount)
	case promo.ModeBundle:
		row.BundleMinItems = input.BundleMinItems
		row.BundlePrice = optionalMoney(input.BundlePrice)
		ids, err := s.validateEligibleProducts(input.EligibleProductIDs)
		if err != nil {
			return err
		}
		row.EligibleProductIDs = ids
	}

	if err := promo.ValidateConfiguration(toPromoCode(row, time.UTC)); err != nil {
		return fmt.Errorf("%w: %v", ErrPromoConfigInvalid, err)
	}
	return nil
}

func (s *PromoCodeAdminService) validateEligibleProducts(raw []uint) (models.IDList, error) {
	ids := models.IDList(raw).Normalize()
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > constants.PromoEligibleProductMax {
		return nil, ErrPromoProductsInvalid
	}
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, ErrPromoProductsInvalid
	}
	return ids, nil
}

// afterChange 失效快照并推送变更事件；失败只记录日志
func (s *PromoCodeAdminService) afterChange(ctx context.Context, row *models.PromoCode, prevCode, change string, adminID uint) {
	if err := cache.DelPromoCode(ctx, row.Code, prevCode); err != nil {
		logger.Warnw("promo_code_cache_invalidate_failed", "promo_code_id", row.ID, "code", row.Code, "error", err)
	}
	payload := queue.PromoCodeChangedPayload{
		PromoCodeID: row.ID,
		Code:        row.Code,
		PrevCode:    prevCode,
		Change:      change,
		AdminID:     adminID,
	}
	if err := s.queueClient.EnqueuePromoCodeChanged(payload); err != nil {
		logger.Warnw("promo_code_changed_enqueue_failed", "promo_code_id", row.ID, "change", change, "error", err)
	}
}

func optionalMoney(value *decimal.Decimal) *models.Money {
	if value == nil {
		return nil
	}
	return models.MoneyPtr(*value)
}
