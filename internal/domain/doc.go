// Package domain models orders emitted by the meal-planning backend and the
// display labels derived from them.
//
// # Order status
//
// The backend reports order status as free-form text in either English or
// Korean, with inconsistent casing and spacing:
//
//	"PENDING", "pending "          → "상품 준비중" (preparing item)
//	"Delivered", "배송 완료", "배송완료" → "배송완료"    (delivered)
//
// Recognized synonyms are listed in statusRules. Any other status is shown to
// the customer exactly as the backend sent it. See [NormalizeOrderStatus].
//
// # Arrival label
//
// Orders arrive one day after they are placed. The label is rendered in
// Korean for the Asia/Seoul timezone:
//
//	orderedAt "2024-01-01" → "1/2(화) 도착"
//
// Date strings follow browser parsing rules: ISO date-only values are UTC
// midnight, zone-less date-times are Seoul wall-clock time. Missing or
// unparseable dates produce an empty label. See [ArrivalLabel].
//
// Neither helper returns an error to callers that only need a renderable string.
//
// # ID Generation
//
// Orders without an orderId or message key get a deterministic SHA-256 ID of
// user|status|orderedAt so replays map to the same downstream row.
package domain
