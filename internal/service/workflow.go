package service

import (
	"slices"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
)

// transitionRule binds one operation to the roles that may perform it, the
// statuses it may start from, and the status it lands on. Every mutating
// entry point consults the table, so the state machine and the authorization
// policy cannot drift apart. ADMIN passes every role check.
type transitionRule struct {
	roles []model.Role
	from  []string
	to    string
}

const (
	opSubmit          = "submit"
	opValidate        = "validate"
	opReturn          = "return"
	opReject          = "reject"
	opResubmit        = "resubmit"
	opIssue           = "issue"
	opMarkAwaiting    = "mark_awaiting_receipt"
	opSubmitReceipt   = "submit_receipt"
	opVerify          = "verify"
	opReturnReceipt   = "return_receipt"
	opCancel          = "cancel"
	opVoid            = "void"
	opApprove         = "approve"
	opReserveSerial   = "reserve_serial"
	opOpenContract    = "open_contract"
	opDeductContract  = "deduct"
	opAdjustContract  = "adjust"
	opStatementExport = "statement"
)

var requisitionRules = map[string]transitionRule{
	opSubmit: {
		roles: []model.Role{model.RoleRequester},
		to:    string(model.RequisitionPendingEMD),
	},
	opValidate: {
		roles: []model.Role{model.RoleEMD},
		from: []string{
			string(model.RequisitionPendingEMD),
			string(model.RequisitionReturned),
			string(model.RequisitionEMDValidated),
		},
		to: string(model.RequisitionEMDValidated),
	},
	opReturn: {
		roles: []model.Role{model.RoleEMD},
		from:  []string{string(model.RequisitionPendingEMD), string(model.RequisitionReturned)},
		to:    string(model.RequisitionReturned),
	},
	opReject: {
		roles: []model.Role{model.RoleEMD},
		from:  []string{string(model.RequisitionPendingEMD), string(model.RequisitionReturned)},
		to:    string(model.RequisitionRejected),
	},
	opResubmit: {
		roles: []model.Role{model.RoleRequester},
		from:  []string{string(model.RequisitionReturned)},
		to:    string(model.RequisitionPendingEMD),
	},
	opIssue: {
		roles: []model.Role{model.RoleSPMS},
		from:  []string{string(model.RequisitionEMDValidated)},
		to:    string(model.RequisitionRISIssued),
	},
	opMarkAwaiting: {
		roles: []model.Role{model.RoleSPMS},
		from:  []string{string(model.RequisitionRISIssued)},
		to:    string(model.RequisitionAwaitingReceipt),
	},
	opSubmitReceipt: {
		roles: []model.Role{model.RoleRequester},
		from: []string{
			string(model.RequisitionRISIssued),
			string(model.RequisitionAwaitingReceipt),
			string(model.RequisitionReceiptReturned),
		},
		to: string(model.RequisitionReceiptSubmitted),
	},
	opVerify: {
		roles: []model.Role{model.RoleEMD},
		from:  []string{string(model.RequisitionReceiptSubmitted)},
		to:    string(model.RequisitionCompleted),
	},
	opReturnReceipt: {
		roles: []model.Role{model.RoleEMD},
		from:  []string{string(model.RequisitionReceiptSubmitted)},
		to:    string(model.RequisitionReceiptReturned),
	},
	opCancel: {
		roles: []model.Role{model.RoleRequester},
		from:  []string{string(model.RequisitionPendingEMD), string(model.RequisitionReturned)},
		to:    string(model.RequisitionCancelled),
	},
	opVoid: {
		roles: []model.Role{model.RoleSPMS},
		from:  []string{string(model.RequisitionRISIssued)},
		to:    string(model.RequisitionVoided),
	},
}

var tripRules = map[string]transitionRule{
	opSubmit: {
		roles: []model.Role{model.RoleRequester},
		to:    string(model.TripPendingApproval),
	},
	opApprove: {
		roles: []model.Role{model.RoleSPMS},
		from:  []string{string(model.TripPendingApproval)},
		to:    string(model.TripApproved),
	},
	opReturn: {
		roles: []model.Role{model.RoleSPMS},
		from:  []string{string(model.TripPendingApproval)},
		to:    string(model.TripReturned),
	},
	opReject: {
		roles: []model.Role{model.RoleSPMS},
		from:  []string{string(model.TripPendingApproval)},
		to:    string(model.TripRejected),
	},
	opResubmit: {
		roles: []model.Role{model.RoleRequester},
		from:  []string{string(model.TripReturned)},
		to:    string(model.TripPendingApproval),
	},
	opCancel: {
		roles: []model.Role{model.RoleRequester},
		from:  []string{string(model.TripPendingApproval), string(model.TripReturned)},
		to:    string(model.TripCancelled),
	},
}

// Operations without a status dimension still go through the same role table.
var actionRoles = map[string][]model.Role{
	opReserveSerial:   {model.RoleSPMS},
	opOpenContract:    {model.RoleSPMS},
	opDeductContract:  {model.RoleSPMS},
	opAdjustContract:  {model.RoleSPMS},
	opStatementExport: {model.RoleEMD, model.RoleSPMS},
}

func roleAllowed(roles []model.Role, p model.Principal) bool {
	return p.IsAdmin() || slices.Contains(roles, p.Role)
}

// checkRule validates role and source status for op against the given table.
func checkRule(rules map[string]transitionRule, op string, p model.Principal, status string) (transitionRule, error) {
	rule, ok := rules[op]
	if !ok {
		return transitionRule{}, &PreconditionError{Operation: op, Role: p.Role, Status: status}
	}
	if !roleAllowed(rule.roles, p) || (len(rule.from) > 0 && !slices.Contains(rule.from, status)) {
		return transitionRule{}, &PreconditionError{
			Operation:        op,
			Role:             p.Role,
			Status:           status,
			ExpectedRoles:    rule.roles,
			ExpectedStatuses: rule.from,
		}
	}
	return rule, nil
}

func checkAction(op string, p model.Principal) error {
	roles, ok := actionRoles[op]
	if !ok || !roleAllowed(roles, p) {
		return &PreconditionError{Operation: op, Role: p.Role, ExpectedRoles: roles}
	}
	return nil
}
