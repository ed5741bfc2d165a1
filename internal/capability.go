package internal

// Capability names one guarded operation as an (object, action) pair of the
// role policy.
type Capability struct {
	Object string
	Action string
}

func (c Capability) String() string {
	return c.Object + ":" + c.Action
}

var (
	CapCreateRequest       = Capability{Object: "request", Action: "create"}
	CapListOwnRequests     = Capability{Object: "request", Action: "list_own"}
	CapViewOwnRequest      = Capability{Object: "request", Action: "view_own"}
	CapViewAnyRequest      = Capability{Object: "request", Action: "view_any"}
	CapListPendingRequests = Capability{Object: "request", Action: "list_pending"}
	CapReviewRequest       = Capability{Object: "request", Action: "review"}
	CapRequestStats        = Capability{Object: "request", Action: "stats"}
	CapReadSoftware        = Capability{Object: "software", Action: "read"}
	CapManageSoftware      = Capability{Object: "software", Action: "write"}
	CapManageUsers         = Capability{Object: "user", Action: "manage"}
)

// Authorizer answers whether a role holds a capability.
type Authorizer interface {
	Can(role Role, c Capability) bool
}

// Authorize returns ErrInsufficientRole unless id holds c.
func Authorize(a Authorizer, id *Identity, c Capability) error {
	if id == nil {
		return ErrMissingToken
	}
	if !a.Can(id.Role, c) {
		return ErrInsufficientRole
	}
	return nil
}
