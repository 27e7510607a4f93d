package app

import (
	"fmt"

	escrowRepository "github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/repository"
	escrowUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/usecase"
)

// EscrowRepository returns the escrow repository instance.
func (c *Container) EscrowRepository() (escrowUseCase.EscrowRepository, error) {
	var err error
	c.escrowRepoInit.Do(func() {
		c.escrowRepo, err = c.initEscrowRepository()
		if err != nil {
			c.initErrors["escrowRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["escrowRepo"]; exists {
		return nil, storedErr
	}
	return c.escrowRepo, nil
}

// EscrowService returns the escrow service instance.
func (c *Container) EscrowService() (escrowUseCase.EscrowService, error) {
	var err error
	c.escrowServiceInit.Do(func() {
		c.escrowService, err = c.initEscrowService()
		if err != nil {
			c.initErrors["escrowService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["escrowService"]; exists {
		return nil, storedErr
	}
	return c.escrowService, nil
}

// initEscrowRepository creates the escrow repository based on the database driver.
func (c *Container) initEscrowRepository() (escrowUseCase.EscrowRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for escrow repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return escrowRepository.NewPostgreSQLEscrowRepository(db), nil
	case "mysql":
		return escrowRepository.NewMySQLEscrowRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEscrowService creates the escrow service with all its dependencies.
func (c *Container) initEscrowService() (escrowUseCase.EscrowService, error) {
	escrowRepo, err := c.EscrowRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow repository for escrow service: %w", err)
	}

	userKeyStore, err := c.UserKeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get user key store for escrow service: %w", err)
	}

	masterKeyStore, err := c.MasterKeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key store for escrow service: %w", err)
	}

	auditLog, err := c.AuditLog()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log for escrow service: %w", err)
	}

	baseService := escrowUseCase.NewEscrowService(
		escrowRepo,
		userKeyStore,
		masterKeyStore,
		c.KeyWrapper(),
		c.KeyDerivation(),
		auditLog,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for escrow service: %w", err)
		}
		return escrowUseCase.NewEscrowServiceWithMetrics(baseService, businessMetrics), nil
	}

	return baseService, nil
}
