package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/insights-dashboard/infra/cloudrun"
	"github.com/GregMSThompson/insights-dashboard/infra/docker"
	"github.com/GregMSThompson/insights-dashboard/infra/firestore"
	"github.com/GregMSThompson/insights-dashboard/infra/identity"
	"github.com/GregMSThompson/insights-dashboard/infra/provider"
	"github.com/GregMSThompson/insights-dashboard/infra/vertex"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity service to allow using firebase
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// enable firestore, create the database, the insights index and TTL policy
		db, err := firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// enable vertex ai for insight generation
		vx, err := vertex.SetupVertex(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		_, err = cloudrun.SetupCloudRun(ctx, prov, ident, db, vx, repo)
		if err != nil {
			return err
		}

		return nil
	})
}
