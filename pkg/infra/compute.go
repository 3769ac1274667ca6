package infra

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/autoscaling"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/webfleet/webfleet/pkg/config"
)

// What the fleet boots: the newest Amazon Linux 2023 image published by
// Amazon for the stack's region.
const (
	amiNamePattern = "al2023-ami-2023*-x86_64"
	amiOwner       = "amazon"
)

type ComputeResources struct {
	ImageId        string
	LaunchTemplate *ec2.LaunchTemplate
	Group          *autoscaling.Group
}

// createComputeResources looks up the machine image, builds the launch
// template, and creates the auto-scaling group. An image lookup miss is
// fatal. Capacity bounds are forwarded exactly as configured.
func createComputeResources(ctx *pulumi.Context, spec config.Spec, net *NetworkResources) (*ComputeResources, error) {
	ami, err := ec2.LookupAmi(ctx, &ec2.LookupAmiArgs{
		MostRecent: pulumi.BoolRef(true),
		Owners:     []string{amiOwner},
		Filters: []ec2.GetAmiFilter{
			{Name: "name", Values: []string{amiNamePattern}},
			{Name: "state", Values: []string{"available"}},
		},
	}, nil)
	if err != nil {
		return nil, fail("machine image lookup", err)
	}

	lt, err := ec2.NewLaunchTemplate(ctx, "web-launch-template", &ec2.LaunchTemplateArgs{
		NamePrefix:          pulumi.String("webfleet-"),
		ImageId:             pulumi.String(ami.Id),
		InstanceType:        pulumi.String(spec.InstanceType),
		VpcSecurityGroupIds: pulumi.StringArray{net.WebSecurityGroup.ID()},
		Tags:                nameTag("web-launch-template"),
	})
	if err != nil {
		return nil, fail("launch template", err)
	}

	group, err := autoscaling.NewGroup(ctx, "web-fleet", &autoscaling.GroupArgs{
		Name:               pulumi.String("webfleet-asg"),
		MinSize:            pulumi.Int(spec.MinSize),
		MaxSize:            pulumi.Int(spec.MaxSize),
		DesiredCapacity:    pulumi.Int(spec.DesiredCapacity),
		VpcZoneIdentifiers: net.SubnetIDs(),
		LaunchTemplate: &autoscaling.GroupLaunchTemplateArgs{
			Id:      lt.ID(),
			Version: pulumi.String("$Latest"),
		},
		Tags: autoscaling.GroupTagArray{
			&autoscaling.GroupTagArgs{
				Key:               pulumi.String("Name"),
				Value:             pulumi.String("webfleet-web"),
				PropagateAtLaunch: pulumi.Bool(true),
			},
		},
	})
	if err != nil {
		return nil, fail("auto-scaling group", err)
	}

	return &ComputeResources{
		ImageId:        ami.Id,
		LaunchTemplate: lt,
		Group:          group,
	}, nil
}
