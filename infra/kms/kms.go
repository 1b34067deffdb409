package kms

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/kms"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/explorer-guide/infra/common"
)

const (
	keyRingName = common.AppName
	historyKey  = "history"
	// stored prompts and answers are re-encrypted under a new version every 90 days
	rotationPeriod = "7776000s"
)

func SetupKMS(ctx *pulumi.Context, prov *gcp.Provider) (*projects.Service, error) {
	return projects.NewService(ctx, "kmsService", &projects.ServiceArgs{
		Service: pulumi.String("cloudkms.googleapis.com"),
	}, pulumi.Provider(prov))
}

// CreateHistoryKey creates the key ring and the key that encrypts session
// history, and returns the key's resource name for KMSKEYNAME.
func CreateHistoryKey(ctx *pulumi.Context, prov *gcp.Provider, kmsService *projects.Service) (pulumi.StringOutput, error) {
	g := common.GCPConfig(ctx)

	ring, err := kms.NewKeyRing(ctx, "guideKeyRing", &kms.KeyRingArgs{
		Location: pulumi.String(g.Region),
		Name:     pulumi.String(keyRingName),
	},
		pulumi.Provider(prov),
		pulumi.DependsOn([]pulumi.Resource{kmsService}),
	)
	if err != nil {
		return pulumi.StringOutput{}, err
	}

	key, err := kms.NewCryptoKey(ctx, "historyKey", &kms.CryptoKeyArgs{
		KeyRing:        ring.ID(),
		Name:           pulumi.String(historyKey),
		Purpose:        pulumi.String("ENCRYPT_DECRYPT"),
		RotationPeriod: pulumi.String(rotationPeriod),
		Labels:         common.Labels("history"),
	},
		pulumi.Provider(prov),
		pulumi.Protect(true),
	)
	if err != nil {
		return pulumi.StringOutput{}, err
	}

	return key.ID().ToStringOutput(), nil
}
