package app

import (
	"fmt"

	"golang.org/x/time/rate"

	documentsRepository "github.com/ameerarsath/publicdocsafe-sub002/internal/documents/repository"
	documentsUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/documents/usecase"
)

// DocumentKeyRepository returns the document key repository instance.
func (c *Container) DocumentKeyRepository() (documentsUseCase.DocumentKeyRepository, error) {
	var err error
	c.documentKeyRepoInit.Do(func() {
		c.documentKeyRepo, err = c.initDocumentKeyRepository()
		if err != nil {
			c.initErrors["documentKeyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.documentKeyRepo, nil
}

// DocumentKeyService returns the document key service instance.
func (c *Container) DocumentKeyService() (documentsUseCase.DocumentKeyService, error) {
	var err error
	c.documentKeyServiceInit.Do(func() {
		c.documentKeyService, err = c.initDocumentKeyService()
		if err != nil {
			c.initErrors["documentKeyService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentKeyService"]; exists {
		return nil, storedErr
	}
	return c.documentKeyService, nil
}

// initDocumentKeyRepository creates the document key repository based on the database driver.
func (c *Container) initDocumentKeyRepository() (documentsUseCase.DocumentKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for document key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return documentsRepository.NewPostgreSQLDocumentKeyRepository(db), nil
	case "mysql":
		return documentsRepository.NewMySQLDocumentKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initDocumentKeyService creates the document key service with all its dependencies.
func (c *Container) initDocumentKeyService() (documentsUseCase.DocumentKeyService, error) {
	documentKeyRepo, err := c.DocumentKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get document key repository for document key service: %w", err)
	}

	userKeyStore, err := c.UserKeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get user key store for document key service: %w", err)
	}

	auditLog, err := c.AuditLog()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log for document key service: %w", err)
	}

	// Zero or negative rate means no throttling.
	rewrapRate := rate.Limit(c.config.RewrapRatePerSec)
	if rewrapRate <= 0 {
		rewrapRate = rate.Inf
	}
	rewrapLimiter := rate.NewLimiter(rewrapRate, c.config.RewrapBurst)

	baseService := documentsUseCase.NewDocumentKeyService(
		documentKeyRepo,
		userKeyStore,
		c.KeyWrapper(),
		c.KeyDerivation(),
		auditLog,
		rewrapLimiter,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for document key service: %w", err)
		}
		return documentsUseCase.NewDocumentKeyServiceWithMetrics(baseService, businessMetrics), nil
	}

	return baseService, nil
}
