// Package notifications posts archive events to an operator-configured
// webhook. Delivery is best effort: the transfer pipeline logs failures and
// moves on.
package notifications
