// Package testimonial lets customers review their own subscription.
//
// Submit never takes a subscription id from the caller: it reviews whatever
// live subscription the customer holds, so a customer cannot attach a
// review to someone else's record. Each subscription accepts one review per
// customer.
package testimonial
