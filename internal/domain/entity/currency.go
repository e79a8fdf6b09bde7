package entity

// Currencies lists the claim currencies offered by the claim form.
// Matrix tiers may reference any of these.
var Currencies = []string{"USD", "EUR", "GBP", "JPY", "SGD", "MYR", "AUD", "CAD"}
