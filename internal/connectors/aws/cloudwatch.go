package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	cloudwatchsvc "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cloudwatchtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Alarm is one CloudWatch metric alarm.
type Alarm struct {
	Name           string `json:"name"`
	Namespace      string `json:"namespace,omitempty"`
	Metric         string `json:"metric,omitempty"`
	State          string `json:"state"`
	ActionsEnabled bool   `json:"actions_enabled"`
	Actions        int    `json:"alarm_actions"`
}

func listAlarms(ctx context.Context, client CloudWatchAPI) ([]Alarm, error) {
	paginator := cloudwatchsvc.NewDescribeAlarmsPaginator(client, &cloudwatchsvc.DescribeAlarmsInput{
		AlarmTypes: []cloudwatchtypes.AlarmType{cloudwatchtypes.AlarmTypeMetricAlarm},
	})
	var alarms []Alarm
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe CloudWatch alarms: %w", err)
		}
		for _, a := range page.MetricAlarms {
			alarms = append(alarms, Alarm{
				Name:           awsv2.ToString(a.AlarmName),
				Namespace:      awsv2.ToString(a.Namespace),
				Metric:         awsv2.ToString(a.MetricName),
				State:          string(a.StateValue),
				ActionsEnabled: awsv2.ToBool(a.ActionsEnabled),
				Actions:        len(a.AlarmActions),
			})
		}
	}
	return alarms, nil
}

// collectCloudWatch inventories metric alarms and flags those that alert nobody.
func collectCloudWatch(ctx context.Context, client CloudWatchAPI, region string) (*domain.SyncResult, error) {
	alarms, err := listAlarms(ctx, client)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(alarms)
	if len(alarms) == 0 {
		return result, nil
	}

	silent := connectors.Select(alarms, func(a Alarm) bool { return !a.ActionsEnabled || a.Actions == 0 })

	result.AddEvidence(connectors.NewEvidence(TypeID, "cloudwatch:alarms:"+region, "CloudWatch metric alarms ("+region+")").
		Describe("%d CloudWatch metric alarms in %s", len(alarms), region).
		With("region", region).
		With("total_alarms", len(alarms)).
		With("by_state", connectors.CountBy(alarms, func(a Alarm) string { return a.State })).
		With("in_alarm", connectors.Count(alarms, func(a Alarm) bool { return a.State == string(cloudwatchtypes.StateValueAlarm) })).
		With("alarms", alarms).
		Controls(controlsCloudWatchAlarms...).
		Build())

	if len(silent) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "cloudwatch:alarms:no_actions:"+region, "CloudWatch alarms without notifications ("+region+")").
			Describe("%d CloudWatch alarms in %s have no enabled alarm actions", len(silent), region).
			With("region", region).
			With("count", len(silent)).
			With("alarms", silent).
			Controls(controlsCloudWatchAlarms...).
			Build())
	}

	return result, nil
}
