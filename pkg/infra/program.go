// Package infra declares the webfleet resource assembly: a network, a site
// bucket, an auto-scaled web fleet, a managed database, and a load balancer,
// constructed as one Pulumi stack in strict dependency order. Resource state
// lives in the provisioning backend; nothing is mutated in-process after
// creation.
package infra

import (
	"strconv"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	pulumiconfig "github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
	"github.com/webfleet/webfleet/pkg/config"
)

// Assembly collects the handles produced by each stage so later stages can
// reference the identifiers of earlier ones.
type Assembly struct {
	Spec config.Spec

	Network      *NetworkResources
	Storage      *StorageResources
	Compute      *ComputeResources
	Database     *DatabaseResources
	LoadBalancer *LoadBalancerResources
}

// ReadSpec resolves the deployment spec from stack configuration, falling
// back to the fixed defaults for anything unset.
func ReadSpec(ctx *pulumi.Context) config.Spec {
	c := pulumiconfig.New(ctx, "webfleet")
	spec := config.Default()

	str := func(key string, dst *string) {
		if v := c.Get(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := c.Get(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("vpc_cidr", &spec.VpcCidr)
	num("az_count", &spec.AzCount)
	str("instance_type", &spec.InstanceType)
	str("bucket_name", &spec.BucketName)
	str("db_name", &spec.DbName)
	str("db_username", &spec.DbUsername)
	str("db_password", &spec.DbPassword)
	str("db_instance_class", &spec.DbInstanceClass)
	num("min_size", &spec.MinSize)
	num("max_size", &spec.MaxSize)
	num("desired_capacity", &spec.DesiredCapacity)
	if v := c.Get("bucket_public"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			spec.BucketPublic = b
		}
	}
	return spec
}

// Program is the Pulumi program entrypoint: it reads the spec from stack
// configuration, runs the assembly, and publishes the outputs.
func Program(ctx *pulumi.Context) error {
	a, err := Assemble(ctx, ReadSpec(ctx))
	if err != nil {
		return err
	}
	a.Export(ctx)
	return nil
}

// Assemble runs every assembly stage in dependency order and returns the
// created handles. A failing stage aborts the remaining ones.
func Assemble(ctx *pulumi.Context, spec config.Spec) (*Assembly, error) {
	a := &Assembly{Spec: spec}

	stages := []Stage{
		{
			Name: "network",
			Run: func(ctx *pulumi.Context) (err error) {
				a.Network, err = createNetworkResources(ctx, spec)
				return err
			},
		},
		{
			Name:      "storage",
			DependsOn: []string{"network"},
			Run: func(ctx *pulumi.Context) (err error) {
				a.Storage, err = createStorageResources(ctx, spec)
				return err
			},
		},
		{
			Name:      "compute",
			DependsOn: []string{"network"},
			Run: func(ctx *pulumi.Context) (err error) {
				a.Compute, err = createComputeResources(ctx, spec, a.Network)
				return err
			},
		},
		{
			Name:      "database",
			DependsOn: []string{"network"},
			Run: func(ctx *pulumi.Context) (err error) {
				a.Database, err = createDatabaseResources(ctx, spec, a.Network)
				return err
			},
		},
		{
			Name:      "loadbalancer",
			DependsOn: []string{"network", "compute"},
			Run: func(ctx *pulumi.Context) (err error) {
				a.LoadBalancer, err = createLoadBalancerResources(ctx, a.Network, a.Compute)
				return err
			},
		},
	}

	if err := RunStages(ctx, stages); err != nil {
		return nil, err
	}
	return a, nil
}

// Export publishes the created identifiers for downstream consumption.
func (a *Assembly) Export(ctx *pulumi.Context) {
	ctx.Export("vpc_id", a.Network.Vpc.ID())
	ctx.Export("subnet_ids", a.Network.SubnetIDs())
	ctx.Export("bucket_name", a.Storage.Bucket.Bucket)
	ctx.Export("bucket_arn", a.Storage.Bucket.Arn)
	ctx.Export("asg_name", a.Compute.Group.Name)
	ctx.Export("db_endpoint", a.Database.Instance.Endpoint)
	ctx.Export("alb_dns_name", a.LoadBalancer.LoadBalancer.DnsName)
}
