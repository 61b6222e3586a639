// dao/county_dao.go
package dao

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
)

// CountyDAO reads the county registry from Neo4j. The registry validates
// requested scopes from scope-exempt callers; it is never consulted to widen
// a scope-bound caller's token scope.
type CountyDAO struct {
	Driver neo4j.Driver
}

func NewCountyDAO(driver neo4j.Driver) *CountyDAO {
	dao := &CountyDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint", zap.Error(err))
	}
	return dao
}

// EnsureUniqueConstraint ensures the unique constraint on the county code.
func (dao *CountyDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("Failed to close Neo4j session", zap.Error(err))
		}
	}()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_county_code IF NOT EXISTS
        FOR (c:COUNTY) REQUIRE c.code IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create unique constraint: %w", err)
		}
		return nil, nil
	})
	return err
}

// GetCounty looks a county up by code.
func (dao *CountyDAO) GetCounty(ctx context.Context, code string) (*model.County, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (c:COUNTY {code: $code})
        RETURN c.code AS code, c.name AS name, c.region AS region, c.active AS active
        `
		records, err := transaction.Run(query, map[string]interface{}{"code": code})
		if err != nil {
			return nil, cmips_errors.ErrDatabaseOperation
		}
		if !records.Next() {
			return nil, cmips_errors.ErrCountyNotFound
		}

		record := records.Record()
		county := &model.County{}
		if v, ok := record.Get("code"); ok {
			county.Code, _ = v.(string)
		}
		if v, ok := record.Get("name"); ok {
			county.Name, _ = v.(string)
		}
		if v, ok := record.Get("region"); ok {
			county.Region, _ = v.(string)
		}
		if v, ok := record.Get("active"); ok {
			county.Active, _ = v.(bool)
		}
		return county, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*model.County), nil
}

// UpsertCounty creates or updates a county registry entry.
func (dao *CountyDAO) UpsertCounty(ctx context.Context, county model.County) error {
	if county.Code == "" {
		return fmt.Errorf("county code cannot be empty")
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (c:COUNTY {code: $code})
        ON CREATE SET c += $props
        ON MATCH SET c += $props
        RETURN c.code AS code
        `
		parameters := map[string]interface{}{
			"code": county.Code,
			"props": map[string]interface{}{
				"name":   county.Name,
				"region": county.Region,
				"active": county.Active,
			},
		}
		if _, err := transaction.Run(query, parameters); err != nil {
			return nil, cmips_errors.ErrDatabaseOperation
		}
		return nil, nil
	})
	if err != nil {
		logger.Error("Failed to upsert county", zap.Error(err), zap.String("code", county.Code))
		return err
	}

	logger.Info("County upserted", zap.String("code", county.Code), zap.String("name", county.Name))
	return nil
}
