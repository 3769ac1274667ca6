package infra

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/rds"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/webfleet/webfleet/pkg/config"
)

const (
	dbEngine        = "postgres"
	dbEngineVersion = "15.4"
	dbStorageGiB    = 20
)

type DatabaseResources struct {
	SubnetGroup    *rds.SubnetGroup
	ParameterGroup *rds.ParameterGroup
	Instance       *rds.Instance
}

// createDatabaseResources creates the subnet group spanning the network's
// subnets and the managed instance: fixed engine, fixed storage, multi-AZ,
// caller-supplied credentials, name and instance class.
func createDatabaseResources(ctx *pulumi.Context, spec config.Spec, net *NetworkResources) (*DatabaseResources, error) {
	subnetGroup, err := rds.NewSubnetGroup(ctx, "db-subnet-group", &rds.SubnetGroupArgs{
		SubnetIds: net.SubnetIDs(),
		Tags:      nameTag("db-subnet-group"),
	})
	if err != nil {
		return nil, fail("db subnet group", err)
	}

	paramGroup, err := rds.NewParameterGroup(ctx, "db-parameter-group", &rds.ParameterGroupArgs{
		Family:      pulumi.String("postgres15"),
		Description: pulumi.String("webfleet database parameters"),
		Tags:        nameTag("db-parameter-group"),
	})
	if err != nil {
		return nil, fail("db parameter group", err)
	}

	instance, err := rds.NewInstance(ctx, "db", &rds.InstanceArgs{
		AllocatedStorage:    pulumi.Int(dbStorageGiB),
		Engine:              pulumi.String(dbEngine),
		EngineVersion:       pulumi.String(dbEngineVersion),
		InstanceClass:       pulumi.String(spec.DbInstanceClass),
		DbName:              pulumi.String(spec.DbName),
		Username:            pulumi.String(spec.DbUsername),
		Password:            pulumi.String(spec.DbPassword),
		MultiAz:             pulumi.Bool(true),
		PubliclyAccessible:  pulumi.Bool(false),
		DbSubnetGroupName:   subnetGroup.Name,
		ParameterGroupName:  paramGroup.Name,
		VpcSecurityGroupIds: pulumi.StringArray{net.DbSecurityGroup.ID()},
		SkipFinalSnapshot:   pulumi.Bool(true),
		Tags:                nameTag(spec.DbName),
	})
	if err != nil {
		return nil, fail("db instance", err)
	}

	return &DatabaseResources{
		SubnetGroup:    subnetGroup,
		ParameterGroup: paramGroup,
		Instance:       instance,
	}, nil
}
