package provider

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/explorer-guide/infra/common"
)

// SetupDefaultProvider pins every resource to the stack's project and region
// and labels it as part of the guide.
func SetupDefaultProvider(ctx *pulumi.Context) (*gcp.Provider, error) {
	g := common.GCPConfig(ctx)

	return gcp.NewProvider(ctx, "gcpProvider", &gcp.ProviderArgs{
		Project:             pulumi.String(g.Project),
		Region:              pulumi.String(g.Region),
		UserProjectOverride: pulumi.Bool(true),
		DefaultLabels:       common.Labels("api"),
	})
}
