package service

import (
	"strings"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/models"
	"github.com/nhorsopheak/promotion-management/internal/repository"
)

// CustomerService 客户与会员管理服务
type CustomerService struct {
	userRepo repository.UserRepository
}

// NewCustomerService 创建客户服务
func NewCustomerService(userRepo repository.UserRepository) *CustomerService {
	return &CustomerService{userRepo: userRepo}
}

// CustomerInput 创建/更新客户输入
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// MembershipInput 会员开通/续期输入
type MembershipInput struct {
	Tier      string
	StartedAt *time.Time
	ExpiresAt *time.Time
}

// Create 创建客户
func (s *CustomerService) Create(input CustomerInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" {
		return nil, ErrCustomerNotFound
	}
	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCustomerEmailExists
	}

	user := &models.User{
		Name:   name,
		Email:  email,
		Phone:  strings.TrimSpace(input.Phone),
		Status: constants.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update 更新客户资料
func (s *CustomerService) Update(id uint, input CustomerInput) (*models.User, error) {
	if id == 0 {
		return nil, ErrCustomerNotFound
	}
	existing, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCustomerNotFound
	}
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" {
		return nil, ErrCustomerNotFound
	}
	if email != existing.Email {
		duplicate, err := s.userRepo.GetByEmail(email)
		if err != nil {
			return nil, err
		}
		if duplicate != nil && duplicate.ID != id {
			return nil, ErrCustomerEmailExists
		}
	}

	existing.Name = name
	existing.Email = email
	existing.Phone = strings.TrimSpace(input.Phone)
	if err := s.userRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// GrantMembership 开通或续期会员
func (s *CustomerService) GrantMembership(id uint, input MembershipInput) (*models.User, error) {
	if id == 0 {
		return nil, ErrCustomerNotFound
	}
	existing, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCustomerNotFound
	}
	tier := strings.ToLower(strings.TrimSpace(input.Tier))
	validTier := false
	for _, t := range constants.MembershipTiers {
		if tier == t {
			validTier = true
			break
		}
	}
	if !validTier {
		return nil, ErrCustomerNotFound
	}

	now := time.Now()
	startedAt := input.StartedAt
	if startedAt == nil {
		startedAt = &now
	}
	existing.IsMember = true
	existing.MembershipTier = tier
	existing.MembershipStartedAt = startedAt
	existing.MembershipExpiresAt = input.ExpiresAt
	if err := s.userRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// RevokeMembership 取消会员资格
func (s *CustomerService) RevokeMembership(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrCustomerNotFound
	}
	existing, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCustomerNotFound
	}

	existing.IsMember = false
	existing.MembershipTier = ""
	existing.MembershipStartedAt = nil
	existing.MembershipExpiresAt = nil
	if err := s.userRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Get 获取客户详情
func (s *CustomerService) Get(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrCustomerNotFound
	}
	return user, nil
}

// List 获取客户列表
func (s *CustomerService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// Delete 删除客户
func (s *CustomerService) Delete(id uint) error {
	if id == 0 {
		return ErrCustomerNotFound
	}
	existing, err := s.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCustomerNotFound
	}
	return s.userRepo.Delete(id)
}
