package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/inkwell-labs/inkwell/internal/app/api/server"
	"github.com/inkwell-labs/inkwell/internal/app/service/auth"
	"github.com/inkwell-labs/inkwell/internal/app/service/journal"
	"github.com/inkwell-labs/inkwell/internal/app/service/membership"
	"github.com/inkwell-labs/inkwell/internal/app/service/notification"
	"github.com/inkwell-labs/inkwell/internal/app/service/payment"
	"github.com/inkwell-labs/inkwell/internal/app/service/quota"
	"github.com/inkwell-labs/inkwell/internal/app/service/statistics"
	"github.com/inkwell-labs/inkwell/internal/app/service/sweeper"
	"github.com/inkwell-labs/inkwell/internal/platform/ai"
	"github.com/inkwell-labs/inkwell/internal/platform/db"
	"github.com/inkwell-labs/inkwell/internal/platform/gateway"
	"github.com/inkwell-labs/inkwell/internal/platform/mailer"
	"github.com/inkwell-labs/inkwell/pkg/clock"
	"github.com/inkwell-labs/inkwell/pkg/config"
	"github.com/inkwell-labs/inkwell/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	clock.Module,
	db.Module,
	gateway.Module,
	mailer.Module,
	ai.Module,
	server.Module,
	auth.Module,
	quota.Module,
	journal.Module,
	membership.Module,
	notification.Module,
	payment.Module,
	statistics.Module,
	sweeper.Module,
)
