package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"learner": {
		"test:view",
		"attempt:create",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
		"certificate:view-own",
		"activity:view-own",
	},
	"author": {
		"course:write",
		"test:write",
		"test:view",
		"attempt:view-all",
	},
	"admin": {
		"*", // everything
	},
}
