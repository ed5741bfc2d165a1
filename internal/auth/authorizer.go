package auth

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/frahmantamala/access-management/internal"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

var authzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "access_authz_decisions_total",
		Help: "Total number of capability checks by role, capability and decision",
	},
	[]string{"role", "capability", "decision"},
)

// PolicyAuthorizer is the single capability predicate for the service. Every
// route guard and service check goes through it.
type PolicyAuthorizer struct {
	enforcer *casbin.SyncedEnforcer
	logger   *slog.Logger
}

func NewPolicyAuthorizer(logger *slog.Logger) (*PolicyAuthorizer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyAuthorizer{enforcer: enforcer, logger: logger}, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch parts[0] {
		case "p":
			if len(parts) != 4 {
				return fmt.Errorf("malformed policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case "g":
			if len(parts) != 3 {
				return fmt.Errorf("malformed grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("unknown policy type %q", parts[0])
		}
	}
	return nil
}

// Can reports whether role holds c. Unknown roles hold nothing.
func (a *PolicyAuthorizer) Can(role internal.Role, c internal.Capability) bool {
	allowed := a.enforce(role, c)

	decision := "deny"
	if allowed {
		decision = "allow"
	}
	label := string(role)
	if !role.IsValid() {
		label = "unknown"
	}
	authzDecisionsTotal.WithLabelValues(label, c.String(), decision).Inc()

	return allowed
}

func (a *PolicyAuthorizer) enforce(role internal.Role, c internal.Capability) bool {
	if !role.IsValid() {
		return false
	}
	allowed, err := a.enforcer.Enforce(string(role), c.Object, c.Action)
	if err != nil {
		a.logger.Error("capability check failed", "role", role, "capability", c.String(), "error", err)
		return false
	}
	return allowed
}
