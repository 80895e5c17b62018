package mailer

import (
	"html/template"
	"math"
	"strconv"
	"strings"
)

var funcs = template.FuncMap{
	"vnd": formatVND,
}

// formatVND renders 1250000 as "1.250.000 ₫"
func formatVND(amount float64) string {
	digits := strconv.FormatInt(int64(math.Round(amount)), 10)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + " ₫"
	if neg {
		out = "-" + out
	}
	return out
}

var orderConfirmationTmpl = template.Must(template.New("order").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#333">
<h2>Cảm ơn {{.CustomerName}} đã đặt hàng!</h2>
<p>Đơn hàng <strong>#{{.OrderID}}</strong> đã được ghi nhận.</p>
<table cellpadding="6" style="border-collapse:collapse">
<tr><th align="left">Sản phẩm</th><th>SL</th><th align="right">Đơn giá</th></tr>
{{range .Lines}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">{{vnd .UnitPrice}}</td></tr>
{{end}}</table>
<p>Tạm tính: {{vnd .TotalPrice}}</p>
{{if gt .DiscountAmount 0.0}}<p>Giảm giá: -{{vnd .DiscountAmount}}</p>{{end}}
<p><strong>Thành tiền: {{vnd .TotalPriceSale}}</strong></p>
<p>Phương thức thanh toán: {{.PaymentMethod}}</p>
{{if .DetailLink}}<p><a href="{{.DetailLink}}">Xem chi tiết đơn hàng</a></p>{{end}}
</body></html>`))

var passwordResetTmpl = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#333">
<p>Xin chào {{.Name}},</p>
<p>Nhấn vào liên kết dưới đây để đặt lại mật khẩu. Liên kết có hiệu lực trong 1 giờ.</p>
<p><a href="{{.Link}}">Đặt lại mật khẩu</a></p>
<p>Nếu bạn không yêu cầu, hãy bỏ qua email này.</p>
</body></html>`))
