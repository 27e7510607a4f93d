package app

import (
	"fmt"

	rotationRepository "github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/repository"
	rotationUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/usecase"
)

// RotationJobRepository returns the rotation job repository instance.
func (c *Container) RotationJobRepository() (rotationUseCase.RotationJobRepository, error) {
	var err error
	c.rotationJobRepoInit.Do(func() {
		c.rotationJobRepo, err = c.initRotationJobRepository()
		if err != nil {
			c.initErrors["rotationJobRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationJobRepo"]; exists {
		return nil, storedErr
	}
	return c.rotationJobRepo, nil
}

// RotationEngine returns the rotation engine instance.
func (c *Container) RotationEngine() (rotationUseCase.RotationEngine, error) {
	var err error
	c.rotationEngineInit.Do(func() {
		c.rotationEngine, err = c.initRotationEngine()
		if err != nil {
			c.initErrors["rotationEngine"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationEngine"]; exists {
		return nil, storedErr
	}
	return c.rotationEngine, nil
}

// initRotationJobRepository creates the rotation job repository based on the database driver.
func (c *Container) initRotationJobRepository() (rotationUseCase.RotationJobRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for rotation job repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return rotationRepository.NewPostgreSQLRotationJobRepository(db), nil
	case "mysql":
		return rotationRepository.NewMySQLRotationJobRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRotationEngine creates the rotation engine with all its dependencies.
func (c *Container) initRotationEngine() (rotationUseCase.RotationEngine, error) {
	rotationJobRepo, err := c.RotationJobRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation job repository for rotation engine: %w", err)
	}

	userKeyStore, err := c.UserKeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get user key store for rotation engine: %w", err)
	}

	documentKeyService, err := c.DocumentKeyService()
	if err != nil {
		return nil, fmt.Errorf("failed to get document key service for rotation engine: %w", err)
	}

	auditLog, err := c.AuditLog()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log for rotation engine: %w", err)
	}

	baseEngine := rotationUseCase.NewRotationEngine(
		rotationJobRepo,
		userKeyStore,
		documentKeyService,
		c.KeyDerivation(),
		auditLog,
		c.Locks(),
		c.config.RotationBatchSize,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for rotation engine: %w", err)
		}
		return rotationUseCase.NewRotationEngineWithMetrics(baseEngine, businessMetrics), nil
	}

	return baseEngine, nil
}
