package resolver

// SynonymGroup lists raw spellings known to denote one canonical field.
type SynonymGroup struct {
	Canonical string   `json:"canonical" yaml:"canonical"`
	Variants  []string `json:"variants" yaml:"variants"`
}

// DefaultSynonyms is the seed table every Resolver starts from.
// Order matters: it fixes the registration order used by fuzzy matching.
var DefaultSynonyms = []SynonymGroup{
	{Canonical: "username", Variants: []string{"username", "user_name", "userName", "Username", "UserName"}},
	{Canonical: "timestamp", Variants: []string{"timestamp", "t_stamp", "time_stamp", "timeStamp", "Timestamp"}},
	{Canonical: "ip_address", Variants: []string{"ip", "IP", "IpAddress", "ip_address", "ipAddress", "Ip"}},
	{Canonical: "email", Variants: []string{"email", "Email", "email_address", "emailAddress", "e_mail"}},
	{Canonical: "age", Variants: []string{"age", "Age", "user_age", "userAge"}},
	{Canonical: "country", Variants: []string{"country", "Country", "location_country"}},
	{Canonical: "status", Variants: []string{"status", "Status", "user_status", "userStatus"}},
}
