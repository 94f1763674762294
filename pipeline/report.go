package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/Ana-Lujan/Restauracion-Imagen/metrics"
)

// buildReport renders the user-facing summary. Metrics that could not be
// computed read "no disponible" instead of a number.
func buildReport(req Request, res metrics.Result) string {
	var b strings.Builder

	b.WriteString("🎨 Procesamiento Completado\n\n")
	fmt.Fprintf(&b, "📋 Método: %s\n", methodDescription(req))
	b.WriteString("📊 Métricas de Calidad:\n")
	fmt.Fprintf(&b, "• PSNR: %s\n", formatPSNR(res.PSNR))
	fmt.Fprintf(&b, "• SSIM: %s\n", formatMetric(res.SSIM))
	fmt.Fprintf(&b, "• MSE: %s\n", formatMetric(res.MSE))
	fmt.Fprintf(&b, "• RMSE: %s\n", formatMetric(res.RMSE))
	fmt.Fprintf(&b, "• Similitud de Histograma: %s\n", formatMetric(res.HistogramSimilarity))
	fmt.Fprintf(&b, "• Preservación de Bordes: %s\n", formatMetric(res.EdgePreservation))
	b.WriteString("\n🔧 Técnicas Aplicadas:\n")
	b.WriteString("• Corrección de Color Automática\n")
	b.WriteString("• Balance de Blancos\n")
	b.WriteString("• Ecualización CLAHE\n")
	b.WriteString("• Operaciones Morfológicas\n")
	b.WriteString("• Nitidez Adaptativa\n")
	b.WriteString("• Reducción de Artefactos\n")
	b.WriteString("• Tone Mapping HDR\n")
	b.WriteString("• Mejora de Bordes")
	return b.String()
}

// degradedReport is the summary for the original-image fallback.
func degradedReport() string {
	return "⚠️ Procesamiento básico (imagen original)"
}

func methodDescription(req Request) string {
	if req.Type == TypeRestoration {
		return "Restauración Avanzada (color correction, denoising, morphological ops, adaptive sharpness)"
	}
	return fmt.Sprintf("Enhancement Avanzado (%s x%d, HDR, color enhancement)",
		strings.ToUpper(req.Method), req.Scale)
}

func formatPSNR(v *float64) string {
	if v == nil {
		return "no disponible"
	}
	if math.IsInf(*v, 1) {
		return "∞ dB"
	}
	return fmt.Sprintf("%.2f dB", *v)
}

func formatMetric(v *float64) string {
	if v == nil {
		return "no disponible"
	}
	return fmt.Sprintf("%.4f", *v)
}
