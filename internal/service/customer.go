package service

import (
	"context"
	"errors"
	"time"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"github.com/sirupsen/logrus"
)

type CustomerService struct {
	repo   db.CustomerRepository
	now    func() time.Time
	logger *logrus.Logger
}

func NewCustomerService(repo db.CustomerRepository, logger *logrus.Logger, opts ...Option) *CustomerService {
	o := buildOptions(opts)
	return &CustomerService{repo: repo, now: o.now, logger: logger}
}

func (s *CustomerService) Create(ctx context.Context, req models.CreateCustomerRequest) (*models.Customer, error) {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Phone == "" {
		return nil, NewValidationError("firstName, lastName, email, and phone are required")
	}

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewStoreError("Error creating customer", err)
	}
	if existing != nil {
		return nil, NewConflictError("Customer with this email already exists")
	}

	customer := &models.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	customer.Touch(s.now())

	if err := s.repo.Create(ctx, customer); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, NewConflictError("Customer with this email already exists")
		}
		return nil, NewStoreError("Error creating customer", err)
	}

	s.logger.WithField("customer_id", customer.ID).Info("Customer created")
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, NewStoreError("Error retrieving customer", err)
	}
	if customer == nil {
		return nil, NewNotFoundError("Customer not found")
	}
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, NewStoreError("Error retrieving customers", err)
	}
	return customers, nil
}

// Update applies the non-empty fields of req.
func (s *CustomerService) Update(ctx context.Context, id string, req models.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, NewStoreError("Error updating customer", err)
	}
	if customer == nil {
		return nil, NewNotFoundError("Customer not found")
	}

	if req.Email != "" && req.Email != customer.Email {
		existing, err := s.repo.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, NewStoreError("Error updating customer", err)
		}
		if existing != nil {
			return nil, NewConflictError("Email already in use")
		}
		customer.Email = req.Email
	}
	if req.FirstName != "" {
		customer.FirstName = req.FirstName
	}
	if req.LastName != "" {
		customer.LastName = req.LastName
	}
	if req.Phone != "" {
		customer.Phone = req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	customer.Touch(s.now())

	if err := s.repo.Update(ctx, customer); err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicate):
			return nil, NewConflictError("Email already in use")
		case errors.Is(err, db.ErrNotFound):
			return nil, NewNotFoundError("Customer not found")
		}
		return nil, NewStoreError("Error updating customer", err)
	}
	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, NewStoreError("Error deleting customer", err)
	}
	if customer == nil {
		return nil, NewNotFoundError("Customer not found")
	}

	s.logger.WithField("customer_id", id).Info("Customer deleted")
	return customer, nil
}
