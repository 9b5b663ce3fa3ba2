package application

import (
	"context"

	"github.com/bnema/robinhood-cli/internal/adapters/transport"
	"github.com/bnema/robinhood-cli/internal/api"
)

// AccountProfile returns trading account settings and balances.
func (s *Service) AccountProfile(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.AccountProfile(), transport.ShapeIndexZero, nil)
	return s.pipeline.Filter(data, field), nil
}

// AccountProfileField is a convenience for single string fields such as
// account_number.
func (s *Service) AccountProfileField(ctx context.Context, field string) (string, error) {
	value, err := s.AccountProfile(ctx, field)
	if err != nil {
		return "", err
	}
	text, _ := value.(string)
	return text, nil
}

// BasicProfile returns personal information tied to the user.
func (s *Service) BasicProfile(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.BasicProfile(), transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field), nil
}

// InvestmentProfile returns the investor questionnaire answers.
func (s *Service) InvestmentProfile(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.InvestmentProfile(), transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field), nil
}

// PortfolioProfile returns equity and market value summaries.
func (s *Service) PortfolioProfile(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.PortfolioProfile(), transport.ShapeIndexZero, nil)
	return s.pipeline.Filter(data, field), nil
}

// SecurityProfile returns regulatory disclosure answers.
func (s *Service) SecurityProfile(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.SecurityProfile(), transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field), nil
}

// UserProfile returns the basic user record.
func (s *Service) UserProfile(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.UserProfile(), transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field), nil
}
