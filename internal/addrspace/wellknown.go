package addrspace

import "github.com/edgeiiot/opcua-runtime/internal/ua"

// Well-known namespace-0 identifiers used by the store and the browse
// engine. Numeric values match the OPC UA standard namespace (Part 6 node
// identifiers); only the handful actually exercised by this runtime are
// declared.
var (
	RootFolder                 = ua.NewNumericNodeID(0, 84)
	ObjectsFolder              = ua.NewNumericNodeID(0, 85)
	TypesFolder                = ua.NewNumericNodeID(0, 86)
	ViewsFolder                = ua.NewNumericNodeID(0, 87)
	ServerObject               = ua.NewNumericNodeID(0, 2253)
	ReferenceOrganizes         = ua.NewNumericNodeID(0, 35)
	ReferenceHasComponent      = ua.NewNumericNodeID(0, 47)
	ReferenceHasProperty       = ua.NewNumericNodeID(0, 46)
	ReferenceHasTypeDefinition = ua.NewNumericNodeID(0, 40)
	ReferenceHasSubtype        = ua.NewNumericNodeID(0, 45)
)
