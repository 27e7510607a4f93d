package app

import (
	"fmt"

	cryptoRepository "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/repository"
	cryptoService "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/service"
	cryptoUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
)

// KeyDerivation returns the key derivation service.
func (c *Container) KeyDerivation() cryptoService.KeyDeriver {
	c.keyDerivationInit.Do(func() {
		c.keyDerivation = cryptoService.NewKeyDerivation(c.config.MinPBKDF2Iterations)
	})
	return c.keyDerivation
}

// KeyWrapper returns the key wrapping service.
func (c *Container) KeyWrapper() cryptoService.KeyWrapper {
	c.keyWrapperInit.Do(func() {
		c.keyWrapper = cryptoService.NewKeyWrapper(cryptoService.NewAEADManager())
	})
	return c.keyWrapper
}

// KMSService returns the KMS service that seals master keys at rest.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// UserKeyRepository returns the user key repository instance.
func (c *Container) UserKeyRepository() (cryptoUseCase.UserKeyRepository, error) {
	var err error
	c.userKeyRepoInit.Do(func() {
		c.userKeyRepo, err = c.initUserKeyRepository()
		if err != nil {
			c.initErrors["userKeyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.userKeyRepo, nil
}

// MasterKeyRepository returns the master key repository instance.
func (c *Container) MasterKeyRepository() (cryptoUseCase.MasterKeyRepository, error) {
	var err error
	c.masterKeyRepoInit.Do(func() {
		c.masterKeyRepo, err = c.initMasterKeyRepository()
		if err != nil {
			c.initErrors["masterKeyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.masterKeyRepo, nil
}

// UserKeyStore returns the user key store instance.
func (c *Container) UserKeyStore() (cryptoUseCase.UserKeyStore, error) {
	var err error
	c.userKeyStoreInit.Do(func() {
		c.userKeyStore, err = c.initUserKeyStore()
		if err != nil {
			c.initErrors["userKeyStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userKeyStore"]; exists {
		return nil, storedErr
	}
	return c.userKeyStore, nil
}

// MasterKeyStore returns the master key store instance.
func (c *Container) MasterKeyStore() (cryptoUseCase.MasterKeyStore, error) {
	var err error
	c.masterKeyStoreInit.Do(func() {
		c.masterKeyStore, err = c.initMasterKeyStore()
		if err != nil {
			c.initErrors["masterKeyStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterKeyStore"]; exists {
		return nil, storedErr
	}
	return c.masterKeyStore, nil
}

// initUserKeyRepository creates the user key repository based on the database driver.
func (c *Container) initUserKeyRepository() (cryptoUseCase.UserKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return cryptoRepository.NewPostgreSQLUserKeyRepository(db), nil
	case "mysql":
		return cryptoRepository.NewMySQLUserKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initMasterKeyRepository creates the master key repository based on the database driver.
func (c *Container) initMasterKeyRepository() (cryptoUseCase.MasterKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for master key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return cryptoRepository.NewPostgreSQLMasterKeyRepository(db), nil
	case "mysql":
		return cryptoRepository.NewMySQLMasterKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initUserKeyStore creates the user key store with all its dependencies.
func (c *Container) initUserKeyStore() (cryptoUseCase.UserKeyStore, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for user key store: %w", err)
	}

	userKeyRepo, err := c.UserKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user key repository for user key store: %w", err)
	}

	baseStore := cryptoUseCase.NewUserKeyStore(
		txManager,
		userKeyRepo,
		c.KeyDerivation(),
		c.Locks(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for user key store: %w", err)
		}
		baseStore = cryptoUseCase.NewUserKeyStoreWithMetrics(baseStore, businessMetrics)
	}

	auditLog, err := c.AuditLog()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log for user key store: %w", err)
	}
	return cryptoUseCase.NewUserKeyStoreWithAudit(baseStore, auditLog), nil
}

// masterKeyStoreBase returns the master key store without the audit
// decorator. The audit log signs entries with keys read through this
// instance, so it cannot depend on the audited store.
func (c *Container) masterKeyStoreBase() (cryptoUseCase.MasterKeyStore, error) {
	var err error
	c.baseMasterKeyStoreInit.Do(func() {
		c.baseMasterKeyStore, err = c.initBaseMasterKeyStore()
		if err != nil {
			c.initErrors["baseMasterKeyStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["baseMasterKeyStore"]; exists {
		return nil, storedErr
	}
	return c.baseMasterKeyStore, nil
}

// initMasterKeyStore wraps the base master key store with audit recording of
// Bootstrap and Rotate.
func (c *Container) initMasterKeyStore() (cryptoUseCase.MasterKeyStore, error) {
	baseStore, err := c.masterKeyStoreBase()
	if err != nil {
		return nil, err
	}

	auditLog, err := c.AuditLog()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log for master key store: %w", err)
	}
	return cryptoUseCase.NewMasterKeyStoreWithAudit(baseStore, auditLog), nil
}

// initBaseMasterKeyStore creates the master key store with all its dependencies.
func (c *Container) initBaseMasterKeyStore() (cryptoUseCase.MasterKeyStore, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for master key store: %w", err)
	}

	masterKeyRepo, err := c.MasterKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key repository for master key store: %w", err)
	}

	baseStore := cryptoUseCase.NewMasterKeyStore(
		txManager,
		masterKeyRepo,
		c.KMSService(),
		c.config.KMSKeyURI,
		c.config.MasterKeyRotationInterval,
		c.Locks(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for master key store: %w", err)
		}
		return cryptoUseCase.NewMasterKeyStoreWithMetrics(baseStore, businessMetrics), nil
	}

	return baseStore, nil
}
