package payment

import "testing"

func TestRenderModeFor(t *testing.T) {
	cases := []struct {
		name string
		qr   string
		want RenderMode
	}{
		{"https image url", "https://img.payos.vn/qr/abc123.png", RenderHostedImage},
		{"http image url", "http://img.payos.vn/qr/abc123.png", RenderHostedImage},
		{"emvco payload", "00020101021238570010A00000072701270006970436011300110123456780208QRIBFTTA53037045802VN6304ABCD", RenderInlineQR},
		{"scheme without host", "https://", RenderInlineQR},
		{"non-http scheme", "payos://qr/abc123", RenderInlineQR},
		{"empty", "", RenderInlineQR},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderModeFor(tc.qr); got != tc.want {
				t.Fatalf("RenderModeFor(%q) = %v, want %v", tc.qr, got, tc.want)
			}
		})
	}
}

func TestPayment_RenderMode(t *testing.T) {
	p := Payment{QRCode: "https://img.payos.vn/qr/abc.png"}
	if p.RenderMode() != RenderHostedImage {
		t.Fatal("expected hosted image mode")
	}
}
