package aws

import (
	"context"
	"fmt"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// staleKeyAge is the age after which an active access key is reported.
const staleKeyAge = 90 * 24 * time.Hour

// IAMUser is the analysed state of one IAM user.
type IAMUser struct {
	UserName         string `json:"user_name"`
	ARN              string `json:"arn"`
	CreatedAt        string `json:"created_at,omitempty"`
	PasswordLastUsed string `json:"password_last_used,omitempty"`
	ConsoleAccess    string `json:"console_access"`
	MFA              string `json:"mfa"`
	ActiveKeys       int    `json:"active_access_keys"`
	StaleKeys        int    `json:"stale_access_keys"`
}

func listIAMUsers(ctx context.Context, client IAMAPI) ([]iamtypes.User, error) {
	paginator := iamsvc.NewListUsersPaginator(client, &iamsvc.ListUsersInput{})
	var users []iamtypes.User
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list IAM users: %w", err)
		}
		users = append(users, page.Users...)
	}
	return users, nil
}

func userMFA(ctx context.Context, client IAMAPI, name string) string {
	out, err := client.ListMFADevices(ctx, &iamsvc.ListMFADevicesInput{UserName: awsv2.String(name)})
	if err != nil {
		logger.Warn("skipping MFA lookup", "user", name, "error", err)
		return statusUnknown
	}
	if len(out.MFADevices) > 0 {
		return statusEnabled
	}
	return statusDisabled
}

// userConsoleAccess reports whether the user has a console password.
// NoSuchEntity means API-only access.
func userConsoleAccess(ctx context.Context, client IAMAPI, name string) string {
	_, err := client.GetLoginProfile(ctx, &iamsvc.GetLoginProfileInput{UserName: awsv2.String(name)})
	if err == nil {
		return statusEnabled
	}
	if hasCode(err, codeNoSuchEntity) {
		return statusDisabled
	}
	logger.Warn("skipping login profile lookup", "user", name, "error", err)
	return statusUnknown
}

func userAccessKeys(ctx context.Context, client IAMAPI, name string) (active, stale int) {
	out, err := client.ListAccessKeys(ctx, &iamsvc.ListAccessKeysInput{UserName: awsv2.String(name)})
	if err != nil {
		logger.Warn("skipping access key lookup", "user", name, "error", err)
		return 0, 0
	}
	for _, k := range out.AccessKeyMetadata {
		if k.Status != iamtypes.StatusTypeActive {
			continue
		}
		active++
		if k.CreateDate != nil && time.Since(*k.CreateDate) > staleKeyAge {
			stale++
		}
	}
	return active, stale
}

// collectIAM inventories IAM users and flags console users without MFA
// and users holding stale access keys.
func collectIAM(ctx context.Context, client IAMAPI) (*domain.SyncResult, error) {
	raw, err := listIAMUsers(ctx, client)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(raw)
	if len(raw) == 0 {
		return result, nil
	}

	users := make([]IAMUser, 0, len(raw))
	for _, u := range raw {
		name := awsv2.ToString(u.UserName)
		user := IAMUser{
			UserName:      name,
			ARN:           awsv2.ToString(u.Arn),
			ConsoleAccess: userConsoleAccess(ctx, client, name),
			MFA:           userMFA(ctx, client, name),
		}
		if u.CreateDate != nil {
			user.CreatedAt = u.CreateDate.UTC().Format(time.RFC3339)
		}
		if u.PasswordLastUsed != nil {
			user.PasswordLastUsed = u.PasswordLastUsed.UTC().Format(time.RFC3339)
		}
		user.ActiveKeys, user.StaleKeys = userAccessKeys(ctx, client, name)
		users = append(users, user)
	}

	noMFA := connectors.Select(users, func(u IAMUser) bool {
		return u.ConsoleAccess == statusEnabled && u.MFA == statusDisabled
	})
	staleKeys := connectors.Select(users, func(u IAMUser) bool { return u.StaleKeys > 0 })

	result.AddEvidence(connectors.NewEvidence(TypeID, "iam:users", "IAM user inventory").
		Describe("%d IAM users inspected for MFA, console access and access keys", len(users)).
		With("total_users", len(users)).
		With("console_users", connectors.Count(users, func(u IAMUser) bool { return u.ConsoleAccess == statusEnabled })).
		With("mfa_enabled", connectors.Count(users, func(u IAMUser) bool { return u.MFA == statusEnabled })).
		With("users", users).
		Controls(controlsIAMInventory...).
		Build())

	if len(noMFA) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "iam:users:no_mfa", "IAM console users without MFA").
			Describe("%d IAM users can sign in to the console without MFA", len(noMFA)).
			With("count", len(noMFA)).
			With("users", noMFA).
			Controls(controlsIAMMFA...).
			Build())
	}

	if len(staleKeys) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "iam:access_keys:stale", "IAM users with stale access keys").
			Describe("%d IAM users hold active access keys older than 90 days", len(staleKeys)).
			With("count", len(staleKeys)).
			With("users", staleKeys).
			Controls(controlsIAMAccessKeys...).
			Build())
	}

	return result, nil
}
