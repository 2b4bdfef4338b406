package inbound

import (
	"context"
	"testing"

	"github.com/lakshaytakkar/team-portal-sub003/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCron(t *testing.T) {
	t.Run("default spec runs hourly", func(t *testing.T) {
		// Arrange
		cfg, err := config.NewViperFromBytes("yaml", []byte("reminder:\n  reference_tz: Asia/Kolkata\n"))
		require.NoError(t, err)
		uc := &fakeUsecase{}

		// Act
		c, err := newCron(context.Background(), cfg, uc)

		// Assert
		require.NoError(t, err)
		entries := c.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "Asia/Kolkata", c.Location().String())

		entries[0].WrappedJob.Run()
		assert.Equal(t, 1, uc.scheduled)
	})

	t.Run("custom spec", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte("reminder:\n  scheduler:\n    cron: \"0 */15 * * * *\"\n"))
		require.NoError(t, err)

		c, err := newCron(context.Background(), cfg, &fakeUsecase{})

		require.NoError(t, err)
		assert.Len(t, c.Entries(), 1)
		assert.Equal(t, "0 */15 * * * *", cronSpec(cfg))
	})

	t.Run("invalid spec", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte("reminder:\n  scheduler:\n    cron: every hour\n"))
		require.NoError(t, err)

		_, err = newCron(context.Background(), cfg, &fakeUsecase{})

		assert.Error(t, err)
	})

	t.Run("invalid location", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte("reminder:\n  reference_tz: Nowhere/Land\n"))
		require.NoError(t, err)

		_, err = newCron(context.Background(), cfg, &fakeUsecase{})

		assert.Error(t, err)
	})
}
