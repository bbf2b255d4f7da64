package service

import (
	"github.com/grabgarden/admin-api/internal/models"
	"github.com/grabgarden/admin-api/internal/repository"
)

// ProductService 商品目录服务（后台选择器）
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ListForPicker 获取后台商品选择器列表，只返回上架商品
func (s *ProductService) ListForPicker(search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     search,
		OnlyActive: true,
	})
}
