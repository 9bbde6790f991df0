package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// Listener is one load balancer listener.
type Listener struct {
	Port      int32  `json:"port"`
	Protocol  string `json:"protocol"`
	SSLPolicy string `json:"ssl_policy,omitempty"`
}

// LoadBalancer is the analysed state of one ALB or NLB.
type LoadBalancer struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Scheme    string     `json:"scheme"`
	DNSName   string     `json:"dns_name,omitempty"`
	Listeners []Listener `json:"listeners"`
	Plaintext string     `json:"plaintext_listeners"`
}

func encryptedProtocol(p elbv2types.ProtocolEnum) bool {
	switch p {
	case elbv2types.ProtocolEnumHttps, elbv2types.ProtocolEnumTls:
		return true
	}
	return false
}

// plaintextListeners reports whether any listener accepts unencrypted HTTP.
// A TCP or UDP listener is not counted since the payload may be encrypted end to end.
func plaintextListeners(listeners []Listener) string {
	for _, l := range listeners {
		if l.Protocol == string(elbv2types.ProtocolEnumHttp) {
			return statusEnabled
		}
	}
	return statusDisabled
}

func listLoadBalancers(ctx context.Context, client ELBAPI) ([]elbv2types.LoadBalancer, error) {
	paginator := elbv2svc.NewDescribeLoadBalancersPaginator(client, &elbv2svc.DescribeLoadBalancersInput{})
	var lbs []elbv2types.LoadBalancer
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe load balancers: %w", err)
		}
		lbs = append(lbs, page.LoadBalancers...)
	}
	return lbs, nil
}

func listListeners(ctx context.Context, client ELBAPI, arn string) ([]Listener, error) {
	paginator := elbv2svc.NewDescribeListenersPaginator(client, &elbv2svc.DescribeListenersInput{
		LoadBalancerArn: awsv2.String(arn),
	})
	var listeners []Listener
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, l := range page.Listeners {
			listeners = append(listeners, Listener{
				Port:      awsv2.ToInt32(l.Port),
				Protocol:  string(l.Protocol),
				SSLPolicy: awsv2.ToString(l.SslPolicy),
			})
		}
	}
	return listeners, nil
}

// collectELB inventories load balancers and their listener encryption.
func collectELB(ctx context.Context, client ELBAPI, region string) (*domain.SyncResult, error) {
	raw, err := listLoadBalancers(ctx, client)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(raw)
	if len(raw) == 0 {
		return result, nil
	}

	lbs := make([]LoadBalancer, 0, len(raw))
	for _, lb := range raw {
		item := LoadBalancer{
			Name:      awsv2.ToString(lb.LoadBalancerName),
			Type:      string(lb.Type),
			Scheme:    string(lb.Scheme),
			DNSName:   awsv2.ToString(lb.DNSName),
			Listeners: []Listener{},
			Plaintext: statusUnknown,
		}
		listeners, err := listListeners(ctx, client, awsv2.ToString(lb.LoadBalancerArn))
		if err != nil {
			logger.Warn("skipping load balancer listeners", "region", region, "load_balancer", item.Name, "error", err)
		} else {
			item.Listeners = listeners
			item.Plaintext = plaintextListeners(listeners)
		}
		lbs = append(lbs, item)
	}

	plaintext := connectors.Select(lbs, func(lb LoadBalancer) bool {
		return lb.Plaintext == statusEnabled && lb.Scheme == string(elbv2types.LoadBalancerSchemeEnumInternetFacing)
	})
	encrypted := 0
	for _, lb := range lbs {
		encrypted += connectors.Count(lb.Listeners, func(l Listener) bool {
			return encryptedProtocol(elbv2types.ProtocolEnum(l.Protocol))
		})
	}

	result.AddEvidence(connectors.NewEvidence(TypeID, "elb:load_balancers:"+region, "Load balancer listeners ("+region+")").
		Describe("%d load balancers in %s", len(lbs), region).
		With("region", region).
		With("total_load_balancers", len(lbs)).
		With("by_type", connectors.CountBy(lbs, func(lb LoadBalancer) string { return lb.Type })).
		With("by_scheme", connectors.CountBy(lbs, func(lb LoadBalancer) string { return lb.Scheme })).
		With("encrypted_listeners", encrypted).
		With("load_balancers", lbs).
		Controls(controlsELB...).
		Build())

	if len(plaintext) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "elb:load_balancers:plaintext:"+region, "Internet-facing load balancers with HTTP listeners ("+region+")").
			Describe("%d internet-facing load balancers in %s accept unencrypted HTTP", len(plaintext), region).
			With("region", region).
			With("count", len(plaintext)).
			With("load_balancers", plaintext).
			Controls(controlsELB...).
			Build())
	}

	return result, nil
}
