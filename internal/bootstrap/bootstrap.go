package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"firebase.google.com/go/v4/auth"

	mapsclient "github.com/GregMSThompson/explorer-guide/internal/client/maps"
	tavilyclient "github.com/GregMSThompson/explorer-guide/internal/client/tavily"
	vertexclient "github.com/GregMSThompson/explorer-guide/internal/client/vertex"
	"github.com/GregMSThompson/explorer-guide/internal/config"
	"github.com/GregMSThompson/explorer-guide/internal/crypto"
	"github.com/GregMSThompson/explorer-guide/internal/models"
	"github.com/GregMSThompson/explorer-guide/internal/store"
	"github.com/GregMSThompson/explorer-guide/pkg/logger"
)

// History is the conversation store selected by configuration.
type History interface {
	Get(ctx context.Context, uid, sessionID string) ([]models.Message, error)
	Append(ctx context.Context, uid, sessionID string, human, assistant models.Message) error
	Close() error
}

type Bootstrap struct {
	Log           *slog.Logger
	Firestore     *firestore.Client
	Firebase      *auth.Client
	KMS           *gcpkms.KeyManagementClient
	Secrets       *secretmanager.Client
	VertexAdapter *vertexclient.Adapter
	MapsAdapter   *mapsclient.Adapter
	TavilyAdapter *tavilyclient.Adapter
	History       History
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	if err = cfg.Validate(); err != nil {
		return bs, err
	}

	if cfg.NeedsSecrets() {
		if err = bs.resolveSecrets(applicationCtx, cfg); err != nil {
			return bs, err
		}
	}

	bs.VertexAdapter, err = vertexclient.NewAdapter(applicationCtx, bs.Log, cfg.ProjectID, cfg.Region, cfg.VertexModel)
	if err != nil {
		return bs, err
	}
	bs.MapsAdapter, err = mapsclient.NewAdapter(cfg.MapsAPIKey, "us")
	if err != nil {
		return bs, err
	}
	bs.TavilyAdapter = tavilyclient.NewAdapter(cfg.TavilyAPIKey)

	if cfg.AuthEnabled {
		bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
		if err != nil {
			return bs, err
		}
	}

	bs.History, err = bs.initHistory(applicationCtx, cfg)
	if err != nil {
		return bs, err
	}

	bs.Log.Info("bootstrap complete",
		"history_backend", cfg.HistoryBackend,
		"auth_enabled", cfg.AuthEnabled,
		"vertex_model", cfg.VertexModel,
		"guide_region", cfg.GuideRegion)
	return bs, nil
}

// RunHistory opens only the configured history store, for read-only tooling.
func RunHistory(cfg *config.Config) (*Bootstrap, error) {
	var err error
	bs := new(Bootstrap)
	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	bs.History, err = bs.initHistory(context.Background(), cfg)
	return bs, err
}

func (bs *Bootstrap) resolveSecrets(ctx context.Context, cfg *config.Config) error {
	var err error
	bs.Secrets, err = secretmanager.NewClient(ctx)
	if err != nil {
		return err
	}
	secrets := store.NewSecretsStore(bs.Secrets, cfg.ProjectID)

	if cfg.MapsAPIKey == "" {
		if cfg.MapsAPIKey, err = secrets.GetSecret(ctx, cfg.MapsAPIKeySecret); err != nil {
			return err
		}
	}
	if cfg.TavilyAPIKey == "" {
		if cfg.TavilyAPIKey, err = secrets.GetSecret(ctx, cfg.TavilyAPIKeySecret); err != nil {
			return err
		}
	}
	return nil
}

func (bs *Bootstrap) initHistory(ctx context.Context, cfg *config.Config) (History, error) {
	switch strings.ToLower(cfg.HistoryBackend) {
	case config.HistoryFirestore:
		var err error
		bs.Firestore, err = InitFirestore(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		if cfg.KMSKeyName == "" {
			return store.NewFirestoreHistory(bs.Firestore, nil), nil
		}
		bs.KMS, err = gcpkms.NewKeyManagementClient(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewFirestoreHistory(bs.Firestore, crypto.NewKMS(bs.KMS, cfg.KMSKeyName)), nil

	case config.HistorySQLite:
		h, err := store.NewSQLiteHistory(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return h, nil

	default:
		return store.NewMemoryHistory(), nil
	}
}

func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.History != nil {
		errList = append(errList, bs.History.Close())
	}
	if bs.VertexAdapter != nil {
		errList = append(errList, bs.VertexAdapter.Close())
	}
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	if bs.KMS != nil {
		errList = append(errList, bs.KMS.Close())
	}
	if bs.Secrets != nil {
		errList = append(errList, bs.Secrets.Close())
	}
	return errors.Join(errList...)
}
