// Package profile finds Firefox profiles and the history databases in them.
//
// A profile is any directory below a Firefox profile root that contains
// both places.sqlite and formhistory.sqlite. The most recently used profile is the one whose
// places.sqlite was modified last.
package profile
