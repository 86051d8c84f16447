// Package catalog maintains the cached device list and per-device metadata.
//
// The catalog is an explicit, owned object: it is refreshed on demand from a
// Source (the cloud client), can be persisted as a YAML cache in the user's
// config directory, and is handed to the reconciliation engine which only
// reads topology flags and display metadata from it. There is no ambient
// global state and no implicit refresh.
//
// # Usage
//
//	cat := catalog.New()
//	if err := cat.Refresh(cloudClient); err != nil {
//	    return err
//	}
//	dev := cat.Find("10004b093a")
//
// SearchParameter provides depth-first introspection of the raw vendor
// metadata tree for keys that have no first-class field:
//
//	if val, ok := cat.SearchParameter("fwVersion", "10004b093a"); ok {
//	    fmt.Println(val)
//	}
package catalog
