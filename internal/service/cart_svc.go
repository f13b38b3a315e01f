package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"retail_service/internal/api/dto"
	"retail_service/internal/model"
	"retail_service/internal/repository"
)

// CartService 购物车与订单
type CartService struct {
	uow         *repository.OrderUnitOfWork
	orderRepo   repository.OrderRepository
	contactRepo repository.ContactRepository
	jobs        JobEnqueuer
}

// NewCartService 创建购物车服务
func NewCartService(
	uow *repository.OrderUnitOfWork,
	orderRepo repository.OrderRepository,
	contactRepo repository.ContactRepository,
	jobs JobEnqueuer,
) *CartService {
	return &CartService{
		uow:         uow,
		orderRepo:   orderRepo,
		contactRepo: contactRepo,
		jobs:        jobs,
	}
}

// ==================== 购物车 ====================

// GetCart 获取购物车, 不存在时返回 NotFound
func (s *CartService) GetCart(ctx context.Context, userID int64) (*dto.OrderInfo, error) {
	basket, err := s.orderRepo.GetBasket(ctx, userID)
	if err != nil {
		return nil, err
	}
	if basket == nil {
		return nil, notFoundErr("购物车为空")
	}
	return toOrderInfo(basket), nil
}

// AddToCart 加入购物车
// 未指定 product_id 或报价不存在的条目被跳过, 每个有效条目都新增一条明细
func (s *CartService) AddToCart(ctx context.Context, userID int64, items []dto.CartItem) (*dto.AddToCartResponse, error) {
	if len(items) == 0 {
		return nil, validationErr("未指定要加入的商品")
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		if item.Quantity < 1 {
			return nil, validationErr("商品 %d 的数量必须大于 0", *item.ProductID)
		}
		ids = append(ids, *item.ProductID)
	}

	resp := &dto.AddToCartResponse{Skipped: []int64{}}
	err := s.uow.Transaction(ctx, func(uow *repository.OrderUnitOfWork) error {
		basket, err := uow.Orders.EnsureBasket(ctx, userID)
		if err != nil {
			return err
		}
		resp.OrderID = basket.ID

		existing, err := uow.ProductInfos.FindExistingIDs(ctx, ids)
		if err != nil {
			return err
		}
		found := make(map[int64]bool, len(existing))
		for _, id := range existing {
			found[id] = true
		}

		toAdd := make([]model.OrderItem, 0, len(items))
		for _, item := range items {
			if item.ProductID == nil {
				continue
			}
			if !found[*item.ProductID] {
				resp.Skipped = append(resp.Skipped, *item.ProductID)
				continue
			}
			toAdd = append(toAdd, model.OrderItem{
				OrderID:       basket.ID,
				ProductInfoID: *item.ProductID,
				Quantity:      item.Quantity,
			})
		}

		resp.Added = len(toAdd)
		return uow.Orders.AddItems(ctx, toAdd)
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Skipped) > 0 {
		zap.L().Info("[CartService] 跳过不存在的商品",
			zap.Int64("user_id", userID),
			zap.Int64s("skipped", resp.Skipped),
		)
	}
	return resp, nil
}

// RemoveFromCart 按 "1,2,3" 移除购物车中的商品, 返回删除条数
func (s *CartService) RemoveFromCart(ctx context.Context, userID int64, productIDs string) (int64, error) {
	ids, err := ParseIDList(productIDs)
	if err != nil {
		return 0, err
	}

	basket, err := s.orderRepo.GetBasket(ctx, userID)
	if err != nil {
		return 0, err
	}
	if basket == nil {
		return 0, notFoundErr("购物车为空")
	}

	deleted, err := s.orderRepo.DeleteItems(ctx, basket.ID, ids)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, newKindError(ErrItemsNotFound, "购物车中没有指定的商品")
	}
	return deleted, nil
}

// ==================== 订单 ====================

// ConfirmOrder 确认下单: 购物车转为新订单并投递通知任务
func (s *CartService) ConfirmOrder(ctx context.Context, userID int64, req *dto.ConfirmOrderRequest) error {
	if req.OrderID == nil || req.ContactID == nil {
		return validationErr("缺少订单 order_id 或联系方式 contact_id")
	}
	orderID, contactID := *req.OrderID, *req.ContactID

	if !model.CanTransition(model.OrderStatusBasket, model.OrderStatusNew) {
		return validationErr("订单状态不允许确认")
	}

	contact, err := s.contactRepo.GetByID(ctx, userID, contactID)
	if err != nil {
		return err
	}
	if contact == nil {
		return notFoundErr("联系方式 %d 不存在", contactID)
	}

	affected, err := s.orderRepo.ConfirmBasket(ctx, userID, orderID, contactID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFoundErr("购物车 %d 不存在或已下单", orderID)
	}

	s.jobs.Enqueue(JobSendOrderConfirmationEmail, orderID)
	s.jobs.Enqueue(JobProcessOrder, orderID)

	zap.L().Info("[CartService] 订单已确认", zap.Int64("user_id", userID), zap.Int64("order_id", orderID))
	return nil
}

// ListOrders 历史订单 (不含购物车)
func (s *CartService) ListOrders(ctx context.Context, userID int64) ([]dto.OrderInfo, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	list := make([]dto.OrderInfo, 0, len(orders))
	for i := range orders {
		list = append(list, *toOrderInfo(&orders[i]))
	}
	return list, nil
}

// ==================== 转换 ====================

func toOrderInfo(order *model.Order) *dto.OrderInfo {
	info := &dto.OrderInfo{
		ID:       order.ID,
		Status:   order.Status,
		Dt:       order.CreatedAt,
		Items:    make([]dto.OrderItemInfo, 0, len(order.Items)),
		TotalSum: order.TotalSum(),
	}
	if order.Contact != nil {
		info.Contact = toContactInfo(order.Contact)
	}

	for _, item := range order.Items {
		row := dto.OrderItemInfo{
			ID:            item.ID,
			ProductInfoID: item.ProductInfoID,
			Quantity:      item.Quantity,
			PriceRRC:      decimal.Zero,
			Sum:           decimal.Zero,
		}
		if pi := item.ProductInfo; pi != nil {
			row.Model = pi.Name
			row.ShopID = pi.ShopID
			row.PriceRRC = pi.PriceRRC
			row.Sum = pi.PriceRRC.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if pi.Product != nil {
				row.ProductName = pi.Product.Name
				if pi.Product.Category != nil {
					row.Category = pi.Product.Category.Name
				}
			}
			if pi.Shop != nil {
				row.ShopName = pi.Shop.Name
			}
		}
		info.ItemCount += item.Quantity
		info.Items = append(info.Items, row)
	}
	return info
}
