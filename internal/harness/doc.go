// Package harness runs placement scenarios: small YAML files that feed
// records through a fresh ingestion session and assert on the resulting
// name mapping, field metrics and placement decisions.
//
// A scenario supplies records inline or asks the seeded generator for a
// number of them:
//
//	name: ip-unification
//	description: Three spellings of the IP address merge into one field
//	records:
//	  - {username: alice, IP: 10.0.0.1}
//	  - {userName: bob, IpAddress: 10.0.0.2}
//	assertions:
//	  - {type: canonical, raw: IpAddress, canonical: ip_address}
//	  - {type: placement, field: ip_address, backend: sql}
//
// Every run is deterministic: ingestion timestamps come from a stepping
// clock and checkpoint ids from a sequential generator. The decision set can
// additionally be compared against a golden snapshot.
package harness
