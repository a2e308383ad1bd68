// Package gateway provides an HTTP client for the luci-app-lpac CGI JSON API.
//
// Every backend endpoint answers with the same envelope:
//
//	{"success": true, "message": "...", "data": {...}}
//
// Some handlers double-encode the body, so the response may also be a JSON
// string whose content is that object. DecodeEnvelope normalizes both forms
// in a single place; nothing else in the console inspects raw bodies.
//
// # Usage Example
//
//	client := gateway.NewClient("192.168.1.1")
//	client.SetSession(token)
//
//	env, err := client.Get(ctx, gateway.EndpointListProfiles)
//	if err != nil {
//	    fmt.Println(gateway.ShortMessage(err))
//	    return
//	}
//	if !env.Success {
//	    fmt.Println("Failed to load profiles:", env.Message())
//	    return
//	}
//	var list gateway.ProfileList
//	_ = env.DecodeData(&list)
//
// # Reads and Actions
//
// Reads use GET and are bounded by ReadTimeout. Actions use POST with a JSON
// body (or form fields with EncodingForm) and are never bounded client-side:
// a profile download can legitimately take minutes. The client never retries.
//
// # Error Handling
//
// Failures are returned as *Error with a Type:
//   - ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS
//   - ErrTypeHTTP for non-2xx statuses
//   - ErrTypeParse when the body is not an envelope
//
// An envelope with success=false is not an error at this layer. Callers turn
// it into ErrTypeAction or ErrTypeReadFailure as appropriate. ShortMessage and
// Hint render any of these for people.
package gateway
