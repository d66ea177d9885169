// Package aegisgate provides a Go client SDK for AegisGate, an AI-governance
// platform that prechecks model and tool actions, routes sensitive actions
// through human approval, and tracks budgets, tools, analytics and
// contextual memory.
//
// Every feature client shares one retry executor (bounded attempts,
// exponential backoff with jitter) and one error taxonomy, so callers can
// branch on error kind and retryability instead of parsing messages.
//
// Basic usage:
//
//	client, err := aegisgate.New("your-api-key", "your-org")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Prechecks.Check(ctx, aegisgate.PrecheckRequest{
//	    Action:   "send_email",
//	    ToolName: "mailer",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if result.Confirm() {
//	    conf, err := client.Confirmations.WaitForApproval(ctx, result.ConfirmationID, aegisgate.WaitOptions{})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("approved at:", conf.ApprovedAt)
//	}
package aegisgate
