package service

import (
	"context"
	"errors"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"

	"gorm.io/gorm"

	"backend/pkg/apperror"
)

type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
}

type CustomerFilter struct {
	Page   int
	Limit  int
	Search string
}

type CustomerService interface {
	ListCustomers(ctx context.Context, filter CustomerFilter) ([]model.Customer, int64, error)
	GetCustomer(ctx context.Context, id uint) (*model.Customer, error)
	CreateCustomer(ctx context.Context, req CustomerRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id uint, req CustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id uint) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) ListCustomers(ctx context.Context, filter CustomerFilter) ([]model.Customer, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	customers, total, err := s.repo.List(ctx, filter.Page, filter.Limit, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, 0, apperror.FromDBError(err, "Could not list customers.")
	}
	return customers, total, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uint) (*model.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Customer not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the customer.")
	}
	return customer, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req CustomerRequest) (*model.Customer, error) {
	customer := model.Customer{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Email:   strings.TrimSpace(req.Email),
		Address: strings.TrimSpace(req.Address),
	}
	if customer.Name == "" {
		return nil, apperror.BadRequest("Customer name is required.")
	}

	if err := s.repo.Create(ctx, &customer); err != nil {
		return nil, apperror.FromDBError(err, "Could not create the customer.")
	}
	return &customer, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uint, req CustomerRequest) (*model.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.BadRequest("Customer name is required.")
	}
	customer.Name = name
	customer.Phone = strings.TrimSpace(req.Phone)
	customer.Email = strings.TrimSpace(req.Email)
	customer.Address = strings.TrimSpace(req.Address)

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, apperror.FromDBError(err, "Could not update the customer.")
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id uint) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.FromDBError(err, "Could not delete the customer.")
	}
	return nil
}
