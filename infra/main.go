package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/explorer-guide/infra/cloudrun"
	"github.com/GregMSThompson/explorer-guide/infra/docker"
	"github.com/GregMSThompson/explorer-guide/infra/firestore"
	"github.com/GregMSThompson/explorer-guide/infra/identity"
	"github.com/GregMSThompson/explorer-guide/infra/kms"
	"github.com/GregMSThompson/explorer-guide/infra/provider"
	"github.com/GregMSThompson/explorer-guide/infra/vertex"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity service so callers can present firebase id tokens
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// firestore holds guide session history
		fs, err := firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// gemini via vertex ai
		vx, err := vertex.SetupVertex(ctx, prov)
		if err != nil {
			return err
		}

		// key used to encrypt stored prompts and answers
		kmsService, err := kms.SetupKMS(ctx, prov)
		if err != nil {
			return err
		}
		historyKey, err := kms.CreateHistoryKey(ctx, prov, kmsService)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		svc, err := cloudrun.SetupCloudRun(ctx, prov, historyKey, ident, fs, vx, repo)
		if err != nil {
			return err
		}

		ctx.Export("serviceUrl", svc.Statuses.Index(pulumi.Int(0)).Url())
		return nil
	})
}
