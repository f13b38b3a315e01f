package service

import (
	"context"
	"strconv"
	"strings"

	"retail_service/internal/api/dto"
	"retail_service/internal/model"
	"retail_service/internal/repository"
)

// ContactService 收货联系方式
type ContactService struct {
	contactRepo repository.ContactRepository
}

// NewContactService 创建联系方式服务
func NewContactService(contactRepo repository.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

// List 当前用户的联系方式
func (s *ContactService) List(ctx context.Context, userID int64) ([]dto.ContactInfo, error) {
	contacts, err := s.contactRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	list := make([]dto.ContactInfo, 0, len(contacts))
	for i := range contacts {
		list = append(list, *toContactInfo(&contacts[i]))
	}
	return list, nil
}

// Create 新建联系方式
func (s *ContactService) Create(ctx context.Context, userID int64, req *dto.ContactRequest) (*dto.ContactInfo, error) {
	contact := &model.Contact{UserID: userID}
	applyContact(contact, req)
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return toContactInfo(contact), nil
}

// Update 修改联系方式, 只能修改自己的
func (s *ContactService) Update(ctx context.Context, userID int64, req *dto.ContactRequest) (*dto.ContactInfo, error) {
	if req.ID <= 0 {
		return nil, validationErr("缺少联系方式 id")
	}

	contact, err := s.contactRepo.GetByID(ctx, userID, req.ID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, notFoundErr("联系方式 %d 不存在", req.ID)
	}

	applyContact(contact, req)
	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return toContactInfo(contact), nil
}

// Delete 按 "1,2,3" 删除, 一条都未匹配时返回 ErrItemsNotFound
func (s *ContactService) Delete(ctx context.Context, userID int64, items string) (int64, error) {
	ids, err := ParseIDList(items)
	if err != nil {
		return 0, err
	}

	deleted, err := s.contactRepo.DeleteByIDs(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, newKindError(ErrItemsNotFound, "未找到要删除的联系方式")
	}
	return deleted, nil
}

// ParseIDList 解析逗号分隔的正整数 ID 列表
func ParseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, validationErr("未指定要处理的条目")
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, validationErr("条目格式错误: %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func applyContact(contact *model.Contact, req *dto.ContactRequest) {
	contact.City = req.City
	contact.Street = req.Street
	contact.House = req.House
	contact.Structure = req.Structure
	contact.Building = req.Building
	contact.Apartment = req.Apartment
	contact.Phone = req.Phone
}

func toContactInfo(contact *model.Contact) *dto.ContactInfo {
	return &dto.ContactInfo{
		ID:        contact.ID,
		City:      contact.City,
		Street:    contact.Street,
		House:     contact.House,
		Structure: contact.Structure,
		Building:  contact.Building,
		Apartment: contact.Apartment,
		Phone:     contact.Phone,
	}
}
