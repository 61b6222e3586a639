// service/county_service.go
package service

import (
	"context"
	"fmt"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/dao"
	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/util"
)

// ICountyService maintains the county registry.
type ICountyService interface {
	GetCounty(ctx context.Context, code string) (*model.County, error)
	UpsertCounty(ctx context.Context, county model.County) error
}

type CountyService struct {
	countyDAO      *dao.CountyDAO
	validationUtil *util.ValidationUtil
}

func NewCountyService(countyDAO *dao.CountyDAO, validationUtil *util.ValidationUtil) *CountyService {
	return &CountyService{countyDAO: countyDAO, validationUtil: validationUtil}
}

func (s *CountyService) GetCounty(ctx context.Context, code string) (*model.County, error) {
	if code == "" {
		return nil, cmips_errors.ErrCountyNotFound
	}
	return s.countyDAO.GetCounty(ctx, code)
}

func (s *CountyService) UpsertCounty(ctx context.Context, county model.County) error {
	if err := s.validationUtil.ValidateCounty(county); err != nil {
		return fmt.Errorf("invalid county: %w", err)
	}
	return s.countyDAO.UpsertCounty(ctx, county)
}
