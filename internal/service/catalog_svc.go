package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"shopcopy_v1_202602/internal/model"
)

// ==================== 错误定义 ====================

var (
	// ErrItemNotFound 商品在目录系统中不存在
	ErrItemNotFound = errors.New("item not found")
)

// CatalogWriteError 目录系统字段级校验失败，写回阶段的硬失败
type CatalogWriteError struct {
	Errors []UserError
}

func (e *CatalogWriteError) Error() string {
	if len(e.Errors) == 0 {
		return "catalog write rejected"
	}
	return fmt.Sprintf("catalog write rejected: %s", e.Errors[0].Message)
}

// UserError 目录系统返回的字段级校验错误
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// ==================== 数据结构 ====================

// ItemDetail 商品完整详情
type ItemDetail struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DescriptionHTML string   `json:"descriptionHtml"`
	ProductType     string   `json:"productType"`
	Vendor          string   `json:"vendor"`
	Tags            []string `json:"tags"`
	FeaturedImage   string   `json:"featuredImage"`
	Images          []string `json:"images"`
	SeoTitle        string   `json:"seoTitle"`
	SeoDescription  string   `json:"seoDescription"`
}

// PrimaryImageURL 取代表性图片：优先主图，其次图库第一张
func (d *ItemDetail) PrimaryImageURL() string {
	if d.FeaturedImage != "" {
		return d.FeaturedImage
	}
	if len(d.Images) > 0 {
		return d.Images[0]
	}
	return ""
}

// CollectionPage 合集成员的一页
type CollectionPage struct {
	ItemIDs    []string
	HasNext    bool
	NextCursor string
}

// ==================== 对目录系统的接口 ====================

// CatalogClient 流水线消费的外部目录契约，仅四个操作
type CatalogClient interface {
	FetchItemDetail(ctx context.Context, shop *model.Shop, productID string) (*ItemDetail, error)
	FetchCollectionMembers(ctx context.Context, shop *model.Shop, collectionID, cursor string) (*CollectionPage, error)
	WriteDescription(ctx context.Context, shop *model.Shop, productID, html string) error
	WriteSeo(ctx context.Context, shop *model.Shop, productID, title, description string) error
}

// ==================== Shopify GraphQL 实现 ====================

// CatalogConfig 目录客户端配置
type CatalogConfig struct {
	// Endpoint 覆盖请求地址（测试用），为空时按店铺域名拼接
	Endpoint   string
	APIVersion string
	Timeout    time.Duration
}

// ShopifyCatalogService 基于 Admin GraphQL API 的目录客户端
type ShopifyCatalogService struct {
	cfg    *CatalogConfig
	client *resty.Client
}

var _ CatalogClient = (*ShopifyCatalogService)(nil)

// NewShopifyCatalogService 创建 Shopify 目录客户端
func NewShopifyCatalogService(cfg *CatalogConfig) *ShopifyCatalogService {
	if cfg == nil {
		cfg = &CatalogConfig{}
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-10"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &ShopifyCatalogService{cfg: cfg, client: client}
}

// ==================== GraphQL 查询 ====================

const productDetailQuery = `
query GetProductDetail($id: ID!) {
  product(id: $id) {
    id
    title
    description
    descriptionHtml
    productType
    vendor
    tags
    featuredImage { url }
    images(first: 10) { edges { node { url } } }
    seo { title description }
  }
}`

const collectionMembersQuery = `
query GetCollectionMembers($collectionId: ID!, $first: Int!, $after: String) {
  collection(id: $collectionId) {
    products(first: $first, after: $after) {
      edges { cursor node { id } }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

const productUpdateMutation = `
mutation ProductUpdate($input: ProductInput!) {
  productUpdate(input: $input) {
    product { id }
    userErrors { field message }
  }
}`

const productSeoUpdateMutation = `
mutation ProductSeoUpdate($input: ProductInput!) {
  productUpdate(input: $input) {
    product { id seo { title description } }
    userErrors { field message }
  }
}`

// ==================== 响应结构 ====================

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type imageNode struct {
	URL string `json:"url"`
}

type productDetailData struct {
	Product *struct {
		ID              string     `json:"id"`
		Title           string     `json:"title"`
		Description     string     `json:"description"`
		DescriptionHTML string     `json:"descriptionHtml"`
		ProductType     string     `json:"productType"`
		Vendor          string     `json:"vendor"`
		Tags            []string   `json:"tags"`
		FeaturedImage   *imageNode `json:"featuredImage"`
		Images          struct {
			Edges []struct {
				Node imageNode `json:"node"`
			} `json:"edges"`
		} `json:"images"`
		Seo struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"seo"`
	} `json:"product"`
}

type collectionMembersData struct {
	Collection *struct {
		Products struct {
			Edges []struct {
				Node struct {
					ID string `json:"id"`
				} `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"products"`
	} `json:"collection"`
}

type productUpdateData struct {
	ProductUpdate *struct {
		Product *struct {
			ID string `json:"id"`
		} `json:"product"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"productUpdate"`
}

// ==================== 核心请求 ====================

func (s *ShopifyCatalogService) endpoint(shop *model.Shop) string {
	if s.cfg.Endpoint != "" {
		return s.cfg.Endpoint
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop.ShopifyDomain, s.cfg.APIVersion)
}

func (s *ShopifyCatalogService) query(ctx context.Context, shop *model.Shop, query string, variables map[string]interface{}, out interface{}) error {
	body := map[string]interface{}{
		"query":     query,
		"variables": variables,
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", shop.ShopifyToken).
		SetBody(body).
		Post(s.endpoint(shop))
	if err != nil {
		return fmt.Errorf("目录请求失败: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("目录 API 错误 [%d]: %s", resp.StatusCode(), resp.String())
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("解析目录响应失败: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("目录 GraphQL 错误: %s", envelope.Errors[0].Message)
	}
	if out != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("解析目录数据失败: %w", err)
		}
	}
	return nil
}

// productGID 统一成 GID 格式
func productGID(id string) string {
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return "gid://shopify/Product/" + id
}

func collectionGID(id string) string {
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return "gid://shopify/Collection/" + id
}

// ==================== 接口实现 ====================

func (s *ShopifyCatalogService) FetchItemDetail(ctx context.Context, shop *model.Shop, productID string) (*ItemDetail, error) {
	var data productDetailData
	err := s.query(ctx, shop, productDetailQuery, map[string]interface{}{
		"id": productGID(productID),
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, ErrItemNotFound
	}

	p := data.Product
	detail := &ItemDetail{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		DescriptionHTML: p.DescriptionHTML,
		ProductType:     p.ProductType,
		Vendor:          p.Vendor,
		Tags:            p.Tags,
		SeoTitle:        p.Seo.Title,
		SeoDescription:  p.Seo.Description,
	}
	if p.FeaturedImage != nil {
		detail.FeaturedImage = p.FeaturedImage.URL
	}
	for _, edge := range p.Images.Edges {
		detail.Images = append(detail.Images, edge.Node.URL)
	}
	return detail, nil
}

func (s *ShopifyCatalogService) FetchCollectionMembers(ctx context.Context, shop *model.Shop, collectionID, cursor string) (*CollectionPage, error) {
	variables := map[string]interface{}{
		"collectionId": collectionGID(collectionID),
		"first":        50,
	}
	if cursor != "" {
		variables["after"] = cursor
	}

	var data collectionMembersData
	if err := s.query(ctx, shop, collectionMembersQuery, variables, &data); err != nil {
		return nil, err
	}
	if data.Collection == nil {
		return nil, ErrItemNotFound
	}

	page := &CollectionPage{
		HasNext:    data.Collection.Products.PageInfo.HasNextPage,
		NextCursor: data.Collection.Products.PageInfo.EndCursor,
	}
	for _, edge := range data.Collection.Products.Edges {
		page.ItemIDs = append(page.ItemIDs, edge.Node.ID)
	}
	return page, nil
}

func (s *ShopifyCatalogService) WriteDescription(ctx context.Context, shop *model.Shop, productID, html string) error {
	var data productUpdateData
	err := s.query(ctx, shop, productUpdateMutation, map[string]interface{}{
		"input": map[string]interface{}{
			"id":              productGID(productID),
			"descriptionHtml": html,
		},
	}, &data)
	if err != nil {
		return err
	}
	return checkUpdateResult(&data)
}

func (s *ShopifyCatalogService) WriteSeo(ctx context.Context, shop *model.Shop, productID, title, description string) error {
	seo := map[string]interface{}{}
	if title != "" {
		seo["title"] = title
	}
	if description != "" {
		seo["description"] = description
	}
	if len(seo) == 0 {
		return nil
	}

	var data productUpdateData
	err := s.query(ctx, shop, productSeoUpdateMutation, map[string]interface{}{
		"input": map[string]interface{}{
			"id":  productGID(productID),
			"seo": seo,
		},
	}, &data)
	if err != nil {
		return err
	}
	return checkUpdateResult(&data)
}

func checkUpdateResult(data *productUpdateData) error {
	if data.ProductUpdate == nil {
		return fmt.Errorf("目录更新无响应数据")
	}
	if len(data.ProductUpdate.UserErrors) > 0 {
		return &CatalogWriteError{Errors: data.ProductUpdate.UserErrors}
	}
	if data.ProductUpdate.Product == nil {
		return fmt.Errorf("目录更新失败")
	}
	return nil
}
