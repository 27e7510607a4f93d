package app

import (
	"fmt"

	auditRepository "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/repository"
	auditService "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/service"
	auditUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/usecase"
)

// AuditLogRepository returns the audit log repository instance.
func (c *Container) AuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	var err error
	c.auditLogRepoInit.Do(func() {
		c.auditLogRepo, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditLogRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogRepo"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepo, nil
}

// EntrySigner returns the audit entry signer.
func (c *Container) EntrySigner() auditService.EntrySigner {
	c.entrySignerInit.Do(func() {
		c.entrySigner = auditService.NewEntrySigner()
	})
	return c.entrySigner
}

// AuditLog returns the audit log instance.
func (c *Container) AuditLog() (auditUseCase.AuditLog, error) {
	var err error
	c.auditLogInit.Do(func() {
		c.auditLog, err = c.initAuditLog()
		if err != nil {
			c.initErrors["auditLog"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLog"]; exists {
		return nil, storedErr
	}
	return c.auditLog, nil
}

// initAuditLogRepository creates the audit log repository based on the database driver.
func (c *Container) initAuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLAuditLogRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditLog creates the audit log with all its dependencies.
func (c *Container) initAuditLog() (auditUseCase.AuditLog, error) {
	auditLogRepo, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit log: %w", err)
	}

	// The base store: signing-key reads are not themselves audited.
	masterKeyStore, err := c.masterKeyStoreBase()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key store for audit log: %w", err)
	}

	return auditUseCase.NewAuditLog(auditLogRepo, masterKeyStore, c.EntrySigner()), nil
}
