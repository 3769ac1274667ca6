package infra

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/autoscaling"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lb"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const healthCheckPath = "/healthz"

type LoadBalancerResources struct {
	LoadBalancer *lb.LoadBalancer
	TargetGroup  *lb.TargetGroup
	Listener     *lb.Listener
	Attachment   *autoscaling.Attachment
}

// createLoadBalancerResources creates the ALB, a health-checked HTTP target
// group, and a listener forwarding all port-80 traffic to it. The target
// group's owning network is discovered by reverse lookup of one of the
// subnets rather than threaded through from the network stage.
func createLoadBalancerResources(ctx *pulumi.Context, net *NetworkResources, compute *ComputeResources) (*LoadBalancerResources, error) {
	alb, err := lb.NewLoadBalancer(ctx, "web-alb", &lb.LoadBalancerArgs{
		Internal:         pulumi.Bool(false),
		LoadBalancerType: pulumi.String("application"),
		SecurityGroups:   pulumi.StringArray{net.LbSecurityGroup.ID()},
		Subnets:          net.SubnetIDs(),
		Tags:             nameTag("web-alb"),
	})
	if err != nil {
		return nil, fail("load balancer", err)
	}

	owningVpc := ec2.LookupSubnetOutput(ctx, ec2.LookupSubnetOutputArgs{
		Id: net.Subnets[0].ID().ToStringOutput().ToStringPtrOutput(),
	}, nil)

	targetGroup, err := lb.NewTargetGroup(ctx, "web-target-group", &lb.TargetGroupArgs{
		Port:       pulumi.Int(80),
		Protocol:   pulumi.String("HTTP"),
		TargetType: pulumi.String("instance"),
		VpcId:      owningVpc.VpcId(),
		HealthCheck: &lb.TargetGroupHealthCheckArgs{
			Path:               pulumi.String(healthCheckPath),
			Protocol:           pulumi.String("HTTP"),
			HealthyThreshold:   pulumi.Int(2),
			UnhealthyThreshold: pulumi.Int(3),
			Interval:           pulumi.Int(30),
			Timeout:            pulumi.Int(5),
		},
		Tags: nameTag("web-target-group"),
	})
	if err != nil {
		return nil, fail("target group", err)
	}

	listener, err := lb.NewListener(ctx, "web-listener", &lb.ListenerArgs{
		LoadBalancerArn: alb.Arn,
		Port:            pulumi.Int(80),
		Protocol:        pulumi.String("HTTP"),
		DefaultActions: lb.ListenerDefaultActionArray{
			&lb.ListenerDefaultActionArgs{
				Type:           pulumi.String("forward"),
				TargetGroupArn: targetGroup.Arn,
			},
		},
	}, pulumi.DependsOn([]pulumi.Resource{alb}))
	if err != nil {
		return nil, fail("listener", err)
	}

	attachment, err := autoscaling.NewAttachment(ctx, "web-fleet-attachment", &autoscaling.AttachmentArgs{
		AutoscalingGroupName: compute.Group.Name,
		LbTargetGroupArn:     targetGroup.Arn,
	})
	if err != nil {
		return nil, fail("target group attachment", err)
	}

	return &LoadBalancerResources{
		LoadBalancer: alb,
		TargetGroup:  targetGroup,
		Listener:     listener,
		Attachment:   attachment,
	}, nil
}
