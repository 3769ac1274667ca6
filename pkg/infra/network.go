package infra

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/c-robinson/iplib"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/webfleet/webfleet/pkg/config"
)

// IngressRule is one allowed inbound flow of a security group:
// a protocol, a port range and the source ranges permitted to use it.
type IngressRule struct {
	Protocol string
	FromPort int
	ToPort   int
	Cidrs    []string
}

type NetworkResources struct {
	Vpc     *ec2.Vpc
	Subnets []*ec2.Subnet

	InternetGateway *ec2.InternetGateway
	RouteTable      *ec2.RouteTable

	WebSecurityGroup *ec2.SecurityGroup
	DbSecurityGroup  *ec2.SecurityGroup
	LbSecurityGroup  *ec2.SecurityGroup
}

func (n *NetworkResources) SubnetIDs() pulumi.StringArray {
	ids := make(pulumi.StringArray, len(n.Subnets))
	for i, s := range n.Subnets {
		ids[i] = s.ID().ToStringOutput()
	}
	return ids
}

// createNetworkResources builds the VPC, one public subnet per availability
// zone, internet routing, and the three security groups everything else
// hangs off. Subnet CIDRs are /24 blocks carved out of the VPC block.
func createNetworkResources(ctx *pulumi.Context, spec config.Spec) (*NetworkResources, error) {
	vpc, err := ec2.NewVpc(ctx, "vpc", &ec2.VpcArgs{
		CidrBlock:          pulumi.String(spec.VpcCidr),
		EnableDnsSupport:   pulumi.Bool(true),
		EnableDnsHostnames: pulumi.Bool(true),
		Tags:               nameTag("webfleet-vpc"),
	})
	if err != nil {
		return nil, fail("vpc", err)
	}

	subnetBlocks, err := carveSubnets(spec.VpcCidr)
	if err != nil {
		return nil, fail("subnet cidrs", err)
	}

	available, err := aws.GetAvailabilityZones(ctx, &aws.GetAvailabilityZonesArgs{
		State: pulumi.StringRef("available"),
	}, nil)
	if err != nil {
		return nil, fail("availability zone lookup", err)
	}

	count := spec.AzCount
	if len(available.Names) < count {
		count = len(available.Names)
	}
	if len(subnetBlocks) < count {
		count = len(subnetBlocks)
	}
	if count < 1 {
		return nil, fail("subnets", fmt.Errorf("no usable availability zones for az_count %d", spec.AzCount))
	}

	subnets := make([]*ec2.Subnet, 0, count)
	for i := 0; i < count; i++ {
		name := "public-subnet-" + strconv.Itoa(i+1)
		subnet, err := ec2.NewSubnet(ctx, name, &ec2.SubnetArgs{
			VpcId:               vpc.ID(),
			CidrBlock:           pulumi.String(subnetBlocks[i]),
			AvailabilityZone:    pulumi.String(available.Names[i]),
			MapPublicIpOnLaunch: pulumi.Bool(true),
			Tags:                nameTag(name),
		})
		if err != nil {
			return nil, fail("subnet "+name, err)
		}
		subnets = append(subnets, subnet)
	}

	igw, err := ec2.NewInternetGateway(ctx, "internet-gateway", &ec2.InternetGatewayArgs{
		VpcId: vpc.ID(),
		Tags:  nameTag("webfleet-igw"),
	})
	if err != nil {
		return nil, fail("internet gateway", err)
	}

	routeTable, err := ec2.NewRouteTable(ctx, "public-route-table", &ec2.RouteTableArgs{
		VpcId: vpc.ID(),
		Tags:  nameTag("webfleet-public-rt"),
	})
	if err != nil {
		return nil, fail("route table", err)
	}

	_, err = ec2.NewRoute(ctx, "public-route", &ec2.RouteArgs{
		RouteTableId:         routeTable.ID(),
		DestinationCidrBlock: pulumi.String("0.0.0.0/0"),
		GatewayId:            igw.ID(),
	})
	if err != nil {
		return nil, fail("default route", err)
	}

	for i, subnet := range subnets {
		name := "public-route-assoc-" + strconv.Itoa(i+1)
		_, err := ec2.NewRouteTableAssociation(ctx, name, &ec2.RouteTableAssociationArgs{
			SubnetId:     subnet.ID(),
			RouteTableId: routeTable.ID(),
		})
		if err != nil {
			return nil, fail("route table association "+name, err)
		}
	}

	lbSg, err := newSecurityGroup(ctx, "lb-security-group", vpc, "load balancer security group", ingressFromRules([]IngressRule{
		{Protocol: "tcp", FromPort: 80, ToPort: 80, Cidrs: []string{"0.0.0.0/0"}},
		{Protocol: "tcp", FromPort: 443, ToPort: 443, Cidrs: []string{"0.0.0.0/0"}},
	}))
	if err != nil {
		return nil, fail("load balancer security group", err)
	}

	webSg, err := newSecurityGroup(ctx, "web-security-group", vpc, "web fleet security group", ingressFromRules([]IngressRule{
		{Protocol: "tcp", FromPort: 22, ToPort: 22, Cidrs: []string{"0.0.0.0/0"}},
		{Protocol: "tcp", FromPort: 80, ToPort: 80, Cidrs: []string{"0.0.0.0/0"}},
	}))
	if err != nil {
		return nil, fail("web security group", err)
	}

	// the database accepts traffic from the web fleet only
	dbSg, err := newSecurityGroup(ctx, "db-security-group", vpc, "database security group", ec2.SecurityGroupIngressArray{
		&ec2.SecurityGroupIngressArgs{
			Protocol:       pulumi.String("tcp"),
			FromPort:       pulumi.Int(5432),
			ToPort:         pulumi.Int(5432),
			SecurityGroups: pulumi.StringArray{webSg.ID()},
		},
	})
	if err != nil {
		return nil, fail("database security group", err)
	}

	return &NetworkResources{
		Vpc:              vpc,
		Subnets:          subnets,
		InternetGateway:  igw,
		RouteTable:       routeTable,
		WebSecurityGroup: webSg,
		DbSecurityGroup:  dbSg,
		LbSecurityGroup:  lbSg,
	}, nil
}

// newSecurityGroup applies the fixed egress contract: every group allows all
// outbound traffic, only ingress varies.
func newSecurityGroup(ctx *pulumi.Context, name string, vpc *ec2.Vpc, desc string, ingress ec2.SecurityGroupIngressArray) (*ec2.SecurityGroup, error) {
	return ec2.NewSecurityGroup(ctx, name, &ec2.SecurityGroupArgs{
		VpcId:       vpc.ID(),
		Description: pulumi.String(desc),
		Ingress:     ingress,
		Egress: ec2.SecurityGroupEgressArray{
			&ec2.SecurityGroupEgressArgs{
				Protocol:   pulumi.String("-1"),
				FromPort:   pulumi.Int(0),
				ToPort:     pulumi.Int(0),
				CidrBlocks: pulumi.StringArray{pulumi.String("0.0.0.0/0")},
			},
		},
		Tags: nameTag(name),
	})
}

func ingressFromRules(rules []IngressRule) ec2.SecurityGroupIngressArray {
	var out ec2.SecurityGroupIngressArray
	for _, r := range rules {
		cidrs := make(pulumi.StringArray, len(r.Cidrs))
		for i, c := range r.Cidrs {
			cidrs[i] = pulumi.String(c)
		}
		out = append(out, &ec2.SecurityGroupIngressArgs{
			Protocol:   pulumi.String(r.Protocol),
			FromPort:   pulumi.Int(r.FromPort),
			ToPort:     pulumi.Int(r.ToPort),
			CidrBlocks: cidrs,
		})
	}
	return out
}

// carveSubnets splits the VPC block into /24 networks.
func carveSubnets(vpcCidr string) ([]string, error) {
	ip, maskStr, ok := strings.Cut(vpcCidr, "/")
	if !ok {
		return nil, fmt.Errorf("invalid cidr %q", vpcCidr)
	}
	mask, err := strconv.Atoi(maskStr)
	if err != nil {
		return nil, fmt.Errorf("invalid cidr mask %q: %w", maskStr, err)
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("invalid cidr address %q", ip)
	}
	blocks, err := iplib.NewNet4(parsed, mask).Subnet(24)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.String()
	}
	return out, nil
}

func nameTag(name string) pulumi.StringMap {
	return pulumi.StringMap{
		"Name":      pulumi.String(name),
		"ManagedBy": pulumi.String("webfleet"),
	}
}
