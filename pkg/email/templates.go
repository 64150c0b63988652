package email

const adminEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Contact Form Submission</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #171A32; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #171A32; }
        .footer { text-align: center; padding: 20px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.SiteName}}</h1>
            <p>New Contact Form Submission</p>
        </div>
        <div class="content">
            <div class="field"><span class="label">Name:</span> {{.Name}}</div>
            <div class="field"><span class="label">Email:</span> {{.Email}}</div>
            <div class="field"><span class="label">Phone:</span> {{.Phone}}</div>
            <div class="field"><span class="label">Service:</span> {{.Service}}</div>
            <div class="field">
                <span class="label">Message:</span><br>
                {{range $i, $line := .Message}}{{if $i}}<br>{{end}}{{$line}}{{end}}
            </div>
            <div class="field"><span class="label">Submitted:</span> {{.SubmittedAt}}</div>
        </div>
        <div class="footer">
            <p>This email was sent from the contact form on {{.SiteName}}</p>
        </div>
    </div>
</body>
</html>`

const autoReplyTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Thank you for contacting us</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #171A32; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { text-align: center; padding: 20px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.SiteName}}</h1>
            <p>Integrity. Excellence. Results.</p>
        </div>
        <div class="content">
            <h2>Thank You for Your Inquiry</h2>
            <p>Dear {{.FirstName}},</p>
            <p>Thank you for contacting {{.SiteName}}. We have received your message regarding our {{.Service}} services.</p>
            <p>Our team will review your inquiry and get back to you within 24 hours.{{if .Phone}} For urgent matters, please call us directly at {{.Phone}}.{{end}}</p>
            <p><strong>Contact Information:</strong><br>
            {{if .Phone}}Phone: {{.Phone}}<br>{{end}}
            Email: {{.Email}}{{if .Address}}<br>
            Address: {{.Address}}{{end}}</p>
            <p>We look forward to assisting you with your legal needs.</p>
            <p>Best regards,<br>
            The Team at {{.SiteName}}</p>
        </div>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
            <p>&copy; {{.Year}} {{.SiteName}}. All rights reserved.</p>
        </div>
    </div>
</body>
</html>`
