package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	httpin "github.com/smartfixosapp/smartfixos/internal/adapters/in/http"
	"github.com/smartfixosapp/smartfixos/internal/adapters/out/eventcache"
	"github.com/smartfixosapp/smartfixos/internal/adapters/out/mailer"
	"github.com/smartfixosapp/smartfixos/internal/adapters/out/postgres"
	"github.com/smartfixosapp/smartfixos/internal/adapters/out/postgres/eventrepo"
	"github.com/smartfixosapp/smartfixos/internal/adapters/out/postgres/staffrepo"
	"github.com/smartfixosapp/smartfixos/internal/core/application/usecases/commands"
	"github.com/smartfixosapp/smartfixos/internal/core/application/usecases/queries"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/services"
	"github.com/smartfixosapp/smartfixos/internal/jobs"
	"github.com/smartfixosapp/smartfixos/internal/notifications"
	"github.com/smartfixosapp/smartfixos/internal/pkg/keyedlock"
	"github.com/smartfixosapp/smartfixos/internal/pkg/secrets"
)

// CompositionRoot wires adapters, domain services, and use-case handlers.
// It owns the long-lived shared pieces (lock registry, event cache, the
// side-effect orchestrator) and hands out fresh handlers on demand.
type CompositionRoot struct {
	config Config

	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	locks        *keyedlock.KeyedLock[kernel.UUID]
	eventCache   *eventcache.Cache
	identity     httpin.ContextIdentityProvider
	cipher       *secrets.Cipher
	orchestrator *notifications.Orchestrator
}

// NewCompositionRoot builds the object graph. Fails fast on malformed
// configuration (bad cipher key, unknown skip statuses).
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	cipher, err := secrets.NewCipher(config.DeviceSecretKey)
	if err != nil {
		return nil, fmt.Errorf("device secret key: %w", err)
	}

	skipStatuses := make([]workorder.Status, 0, len(config.EmailSkipStatuses))
	for _, id := range config.EmailSkipStatuses {
		status, statusErr := workorder.StatusFromString(id)
		if statusErr != nil {
			return nil, fmt.Errorf("email skip statuses: %w", statusErr)
		}
		skipStatuses = append(skipStatuses, status)
	}

	emailSender := mailer.NewSMTPSender(
		config.SMTPHost, config.SMTPPort, config.SMTPFrom,
		config.SMTPUsername, config.SMTPPassword)

	orchestrator := notifications.NewOrchestrator(
		eventrepo.NewGormEventRepository(gormDB),
		emailSender,
		staffrepo.NewGormNotifier(gormDB),
		staffrepo.NewGormStaffDirectory(gormDB),
		staffrepo.NewGormCustomerDirectory(gormDB),
		skipStatuses,
		config.SideEffectTimeout,
		config.EmailFromName,
		logger,
	)

	return &CompositionRoot{
		config:       config,
		gormDB:       gormDB,
		uowFactory:   postgres.NewGormUnitOfWorkFactory(gormDB),
		locks:        keyedlock.New[kernel.UUID](),
		eventCache:   eventcache.New(),
		identity:     httpin.NewContextIdentityProvider(),
		cipher:       cipher,
		orchestrator: orchestrator,
	}, nil
}

// EventCache exposes the shared event-trail cache (jobs sweep it).
func (c *CompositionRoot) EventCache() *eventcache.Cache {
	return c.eventCache
}

// Orchestrator exposes the side-effect orchestrator for shutdown draining.
func (c *CompositionRoot) Orchestrator() *notifications.Orchestrator {
	return c.orchestrator
}

// CreateAuthenticator returns the bearer-token authenticator.
func (c *CompositionRoot) CreateAuthenticator() *httpin.Authenticator {
	return httpin.NewAuthenticator([]byte(c.config.JWTSecret))
}

// CreateJobManager returns the scheduled-job manager.
func (c *CompositionRoot) CreateJobManager(logger *slog.Logger) *jobs.JobManager {
	return jobs.NewJobManager(c.eventCache, logger)
}

func (c *CompositionRoot) CreateCreateWorkOrderCommandHandler() commands.CreateWorkOrderCommandHandler {
	return commands.NewCreateWorkOrderCommandHandler(
		c.orderUoWFactory(), c.identity, c.cipher, kernel.RateFromFloat(c.config.TaxRate))
}

func (c *CompositionRoot) CreateChangeStatusCommandHandler() commands.ChangeStatusCommandHandler {
	return commands.NewChangeStatusCommandHandler(
		c.orderUoWFactory(), c.identity, c.locks,
		services.NewTransitionGuard(), c.orchestrator, c.eventCache)
}

func (c *CompositionRoot) CreateProcessPaymentCommandHandler() commands.ProcessPaymentCommandHandler {
	var f commands.PaymentUoWFactory = FuncPaymentUoWFactory(func() commands.PaymentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewProcessPaymentCommandHandler(
		f, c.identity, c.locks,
		services.NewLedgerReconciler(), services.NewTransitionGuard(),
		c.orchestrator, c.eventCache)
}

func (c *CompositionRoot) CreateAddLineItemCommandHandler() commands.AddLineItemCommandHandler {
	return commands.NewAddLineItemCommandHandler(
		c.orderUoWFactory(), c.identity, c.locks, c.eventCache,
		c.config.AllowItemEditsAfterClose)
}

func (c *CompositionRoot) CreateRemoveLineItemCommandHandler() commands.RemoveLineItemCommandHandler {
	return commands.NewRemoveLineItemCommandHandler(
		c.orderUoWFactory(), c.identity, c.locks, c.eventCache,
		c.config.AllowItemEditsAfterClose)
}

func (c *CompositionRoot) CreateSetDiscountCommandHandler() commands.SetDiscountCommandHandler {
	return commands.NewSetDiscountCommandHandler(
		c.orderUoWFactory(), c.identity, c.locks, c.eventCache,
		c.config.AllowItemEditsAfterClose)
}

func (c *CompositionRoot) CreateAddNoteCommandHandler() commands.AddNoteCommandHandler {
	return commands.NewAddNoteCommandHandler(c.eventUoWFactory(), c.identity, c.eventCache)
}

func (c *CompositionRoot) CreateDeleteNoteEventCommandHandler() commands.DeleteNoteEventCommandHandler {
	return commands.NewDeleteNoteEventCommandHandler(
		c.eventUoWFactory(), c.identity, c.eventCache,
		[]byte(c.config.NoteDeleteSecretHash))
}

func (c *CompositionRoot) CreateGetWorkOrderQueryHandler() queries.GetWorkOrderQueryHandler {
	return queries.NewGetWorkOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveWorkOrdersQueryHandler() queries.GetActiveWorkOrdersQueryHandler {
	return queries.NewGetActiveWorkOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetWorkOrderEventsQueryHandler() queries.GetWorkOrderEventsQueryHandler {
	return queries.NewGetWorkOrderEventsQueryHandler(c.gormDB, c.eventCache, c.config.EventCacheTTL)
}

// CreateServer assembles the HTTP server over all handlers.
func (c *CompositionRoot) CreateServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateCreateWorkOrderCommandHandler(),
		c.CreateChangeStatusCommandHandler(),
		c.CreateProcessPaymentCommandHandler(),
		c.CreateAddLineItemCommandHandler(),
		c.CreateRemoveLineItemCommandHandler(),
		c.CreateSetDiscountCommandHandler(),
		c.CreateAddNoteCommandHandler(),
		c.CreateDeleteNoteEventCommandHandler(),
		c.CreateGetWorkOrderQueryHandler(),
		c.CreateGetActiveWorkOrdersQueryHandler(),
		c.CreateGetWorkOrderEventsQueryHandler(),
	)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) eventUoWFactory() commands.EventUoWFactory {
	return FuncEventUoWFactory(func() commands.EventUoW {
		return c.uowFactory.Create()
	})
}

// FuncOrderUoWFactory adapts a closure to the OrderUoWFactory interface.
type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

// FuncPaymentUoWFactory adapts a closure to the PaymentUoWFactory interface.
type FuncPaymentUoWFactory func() commands.PaymentUoW

func (f FuncPaymentUoWFactory) Create() commands.PaymentUoW {
	return f()
}

// FuncEventUoWFactory adapts a closure to the EventUoWFactory interface.
type FuncEventUoWFactory func() commands.EventUoW

func (f FuncEventUoWFactory) Create() commands.EventUoW {
	return f()
}

// Wait drains in-flight side effects. Called on shutdown so a committed
// transition never loses its notifications to process exit.
func (c *CompositionRoot) Wait(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		c.orchestrator.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}
