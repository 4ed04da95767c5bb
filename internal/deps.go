// Package internal wires the application's dependencies together
package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"barylstyle/contacts-api/aws"
	"barylstyle/contacts-api/config"
	"barylstyle/contacts-api/db"
	"barylstyle/contacts-api/internal/repository"
	"barylstyle/contacts-api/internal/service"
	"barylstyle/contacts-api/internal/storage"
	"barylstyle/contacts-api/pkg/security"

	"go.uber.org/zap"
)

// AvatarURLPrefix is where locally stored avatars are served from
const AvatarURLPrefix = "/avatars"

// Deps is built once at startup and handed to every handler
type Deps struct {
	Config   *config.Config
	Users    repository.UserRepository
	Contacts repository.ContactRepository
	Argon    *security.ArgonHash
	Auth     *service.AuthService
	Avatars  *service.AvatarService
	Mail     *service.MailQueue

	closers []func(context.Context) error
}

type options struct {
	mailer service.Mailer
	argon  *security.ArgonHash
}

type Option func(*options)

// WithMailer replaces the mailer selected by the configuration
func WithMailer(m service.Mailer) Option {
	return func(o *options) { o.mailer = m }
}

// WithArgon replaces the default password hashing parameters
func WithArgon(a *security.ArgonHash) Option {
	return func(o *options) { o.argon = a }
}

// NewDeps opens the configured backends and starts the background workers.
// Workers stop when ctx is cancelled, Close releases the connections.
func NewDeps(ctx context.Context, cfg *config.Config, opts ...Option) (*Deps, error) {
	o := options{argon: security.New()}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Deps{
		Config: cfg,
		Argon:  o.argon,
	}

	if err := d.openDatabase(ctx); err != nil {
		return nil, err
	}

	if cfg.Contacts.Store == "file" {
		contacts, err := repository.NewFileContactRepository(cfg.Contacts.FilePath)
		if err != nil {
			d.Close(ctx)
			return nil, err
		}
		d.Contacts = contacts
	}

	store, err := newAvatarStore(ctx, cfg)
	if err != nil {
		d.Close(ctx)
		return nil, err
	}

	if err := os.MkdirAll(cfg.Avatar.TmpDir, 0o755); err != nil {
		d.Close(ctx)
		return nil, fmt.Errorf("failed to create upload directory, %w", err)
	}

	mailer := o.mailer
	if mailer == nil {
		if cfg.Mail.Enabled {
			mailer = service.NewSMTPMailer(&cfg.Mail)
		} else {
			mailer = service.LogMailer{}
		}
	}

	d.Mail = service.NewMailQueue(mailer, cfg.Mail.Workers, cfg.Mail.QueueSize, cfg.Mail.SendTimeout)
	d.Mail.StartWorkerPool(ctx)

	d.Auth = service.NewAuthService(d.Users, d.Argon, d.Mail, service.AuthOptions{
		Secret:              []byte(cfg.JWT.Secret),
		TokenTTL:            cfg.Auth.TokenTTL,
		RequireVerification: cfg.Auth.RequireVerification,
		GravatarDefault:     cfg.Avatar.GravatarDefault,
		PublicURL:           cfg.Host.PublicURL,
	})
	d.Avatars = service.NewAvatarService(d.Users, store)

	if cfg.Auth.TokenCleanupInterval > 0 {
		go service.TokenCleanup(ctx, cfg.Auth.TokenCleanupInterval, d.Users)
	}

	return d, nil
}

func (d *Deps) openDatabase(ctx context.Context) error {
	if d.Config.Database.Driver == "mongo" {
		client, database, err := db.NewMongo(ctx, &d.Config.Database)
		if err != nil {
			return err
		}

		d.Users = repository.NewMongoUserRepository(database)
		d.Contacts = repository.NewMongoContactRepository(database)
		d.closers = append(d.closers, client.Disconnect)
		return nil
	}

	gdb, err := db.New(&d.Config.Database)
	if err != nil {
		return err
	}

	d.Users = repository.NewGormUserRepository(gdb)
	d.Contacts = repository.NewGormContactRepository(gdb)
	d.closers = append(d.closers, func(context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	return nil
}

func newAvatarStore(ctx context.Context, cfg *config.Config) (storage.AvatarStore, error) {
	if cfg.Storage.Type == "s3" {
		client, err := aws.NewS3(ctx, &cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		return storage.NewS3Store(client, cfg.AWS.PublicURL), nil
	}

	return storage.NewLocalStore(cfg.Storage.LocalDir, AvatarURLPrefix)
}

// Close releases the database connections
func (d *Deps) Close(ctx context.Context) error {
	var errs []error
	for _, c := range d.closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		zap.L().Error("Failed to close dependencies", zap.Errors("errors", errs))
	}

	return errors.Join(errs...)
}
