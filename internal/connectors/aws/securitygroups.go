package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

const (
	anyIPv4 = "0.0.0.0/0"
	anyIPv6 = "::/0"
)

// OpenRule is an ingress rule reachable from the whole internet.
type OpenRule struct {
	Protocol string `json:"protocol"`
	FromPort int32  `json:"from_port"`
	ToPort   int32  `json:"to_port"`
	Source   string `json:"source"`
}

// SecurityGroup is the analysed state of one EC2 security group.
type SecurityGroup struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	VPCID     string     `json:"vpc_id,omitempty"`
	Ingress   int        `json:"ingress_rules"`
	OpenRules []OpenRule `json:"open_rules,omitempty"`
}

func openRules(perm ec2types.IpPermission) []OpenRule {
	protocol := awsv2.ToString(perm.IpProtocol)
	if protocol == "-1" {
		protocol = "all"
	}
	rule := OpenRule{
		Protocol: protocol,
		FromPort: awsv2.ToInt32(perm.FromPort),
		ToPort:   awsv2.ToInt32(perm.ToPort),
	}
	var out []OpenRule
	for _, r := range perm.IpRanges {
		if awsv2.ToString(r.CidrIp) == anyIPv4 {
			rule.Source = anyIPv4
			out = append(out, rule)
		}
	}
	for _, r := range perm.Ipv6Ranges {
		if awsv2.ToString(r.CidrIpv6) == anyIPv6 {
			rule.Source = anyIPv6
			out = append(out, rule)
		}
	}
	return out
}

func listSecurityGroups(ctx context.Context, client EC2API) ([]SecurityGroup, error) {
	paginator := ec2svc.NewDescribeSecurityGroupsPaginator(client, &ec2svc.DescribeSecurityGroupsInput{})
	var groups []SecurityGroup
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe security groups: %w", err)
		}
		for _, sg := range page.SecurityGroups {
			group := SecurityGroup{
				ID:      awsv2.ToString(sg.GroupId),
				Name:    awsv2.ToString(sg.GroupName),
				VPCID:   awsv2.ToString(sg.VpcId),
				Ingress: len(sg.IpPermissions),
			}
			for _, perm := range sg.IpPermissions {
				group.OpenRules = append(group.OpenRules, openRules(perm)...)
			}
			groups = append(groups, group)
		}
	}
	return groups, nil
}

// collectSecurityGroups inventories security groups and flags those with
// ingress open to the internet.
func collectSecurityGroups(ctx context.Context, client EC2API, region string) (*domain.SyncResult, error) {
	groups, err := listSecurityGroups(ctx, client)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(groups)
	if len(groups) == 0 {
		return result, nil
	}

	open := connectors.Select(groups, func(g SecurityGroup) bool { return len(g.OpenRules) > 0 })

	result.AddEvidence(connectors.NewEvidence(TypeID, "ec2:security_groups:"+region, "EC2 security groups ("+region+")").
		Describe("%d security groups in %s, %d with internet-facing ingress", len(groups), region, len(open)).
		With("region", region).
		With("total_groups", len(groups)).
		With("open_groups", len(open)).
		With("groups", groups).
		Controls(controlsSecurityGroups...).
		Build())

	if len(open) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "ec2:security_groups:open:"+region, "Security groups open to the internet ("+region+")").
			Describe("%d security groups in %s allow ingress from 0.0.0.0/0 or ::/0", len(open), region).
			With("region", region).
			With("count", len(open)).
			With("groups", open).
			Controls(controlsSecurityGroups...).
			Build())
	}

	return result, nil
}
