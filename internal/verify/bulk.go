package verify

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// VerifyBulk runs the verifier across many addresses with a bounded
// worker pool. Empty strings and addresses failing the syntax gate are
// dropped before dispatch; the returned slice matches the surviving
// input order. A panicking worker yields an error-status result for
// its address without aborting the batch. maxWorkers below 1 is
// treated as 1.
func (v *Verifier) VerifyBulk(ctx context.Context, emails []string, maxWorkers int) []Result {
	v.metrics.BulkBatchReceived(len(emails))
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	accepted := make([]string, 0, len(emails))
	for _, e := range emails {
		if e == "" || !emailPattern.MatchString(e) {
			continue
		}
		accepted = append(accepted, e)
	}
	v.logger.Info("bulk verification started",
		"batch", len(emails),
		"accepted", len(accepted),
		"workers", maxWorkers,
	)

	results := make([]Result, len(accepted))
	var g errgroup.Group
	g.SetLimit(maxWorkers)
	for i, email := range accepted {
		i, email := i, email
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					v.logger.Error("verification worker panicked", "email", email, "panic", r)
					results[i] = Result{
						Email:  email,
						Status: StatusError,
						Reason: fmt.Sprintf("exception:%v", r),
					}
				}
			}()
			results[i] = v.Verify(ctx, email)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
