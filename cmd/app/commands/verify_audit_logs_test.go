package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
)

func TestRunVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success-text", func(t *testing.T) {
		auditLog := &mockAuditLog{}
		auditLog.On("Verify", ctx).Return(1250, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, auditLog, logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Verified Entries: 1250")
		require.Contains(t, out.String(), "Status: PASSED")
		auditLog.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		auditLog := &mockAuditLog{}
		auditLog.On("Verify", ctx).Return(42, nil)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, auditLog, logger, &out, "json")

		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, float64(42), result["verified_count"])
		require.Equal(t, true, result["passed"])
		auditLog.AssertExpectations(t)
	})

	t.Run("signature-mismatch", func(t *testing.T) {
		auditLog := &mockAuditLog{}
		auditLog.On("Verify", ctx).Return(17, auditDomain.ErrSignatureMismatch)

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, auditLog, logger, &out, "text")

		require.Error(t, err)
		require.ErrorIs(t, err, auditDomain.ErrSignatureMismatch)
		require.Contains(t, out.String(), "Verified Entries: 17")
		require.Contains(t, out.String(), "Status: FAILED")
		auditLog.AssertExpectations(t)
	})

	t.Run("verify-error", func(t *testing.T) {
		auditLog := &mockAuditLog{}
		auditLog.On("Verify", ctx).Return(0, errors.New("database offline"))

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, auditLog, logger, &out, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to verify audit logs")
		require.Empty(t, out.String())
		auditLog.AssertExpectations(t)
	})
}
