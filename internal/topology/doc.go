// Package topology classifies devices by parameter addressing scheme.
//
// A device is either Flat (one parameter namespace) or MultiOutlet
// (parameters partitioned by outlet index). The classification is derived
// once per device from the cached capability flag and drives how the
// reconciliation engine validates and addresses desired changes.
package topology
