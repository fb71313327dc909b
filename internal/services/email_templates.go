package services

const adminNewRegistrationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Registration</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #1D4ED8; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>New Registration - {{.EventName}}</h1>
        </div>
        <div class="content">
            <p>Team <strong>{{.TeamName}}</strong> registered at {{.RegistrationTime}}.</p>
            <h3>Members</h3>
            <table>
                <tr><th>Name</th><th>Email</th><th>University</th></tr>
                {{range .Members}}<tr><td>{{.Name}}</td><td>{{.Email}}</td><td>{{.UniversityName}}</td></tr>{{end}}
            </table>
            <h3>Modules</h3>
            <table>
                <tr><th>Module</th><th>Total registrations</th></tr>
                {{range $module, $count := .ModuleCounts}}<tr><td>{{$module}}</td><td>{{$count}}</td></tr>{{end}}
            </table>
        </div>
        <div class="footer">&copy; {{.Year}} Taakra Events</div>
    </div>
</body>
</html>`

const paymentPendingTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Registration Pending</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #D97706; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Registration Pending Approval</h1>
        </div>
        <div class="content">
            <p>Dear team <strong>{{.TeamName}}</strong>,</p>
            <p>We received your payment receipt{{if .EventName}} for <strong>{{.EventName}}</strong>{{end}}.
            Your registration for {{range $i, $m := .Modules}}{{if $i}}, {{end}}{{$m}}{{end}} is now pending approval.
            We will email you once it has been reviewed.</p>
        </div>
        <div class="footer">&copy; {{.Year}} Taakra Events</div>
    </div>
</body>
</html>`

const registrationApprovedTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Registration Approved</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #059669; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Registration Approved</h1>
        </div>
        <div class="content">
            <p>Dear team <strong>{{.TeamName}}</strong>,</p>
            <p>Your registration{{if .EventName}} for <strong>{{.EventName}}</strong>{{end}} has been approved.
            See you at the event!</p>
        </div>
        <div class="footer">&copy; {{.Year}} Taakra Events</div>
    </div>
</body>
</html>`

const registrationRejectedTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Registration Update</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #DC2626; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Registration Update</h1>
        </div>
        <div class="content">
            <p>Dear team <strong>{{.TeamName}}</strong>,</p>
            <p>Your payment receipt{{if .EventName}} for <strong>{{.EventName}}</strong>{{end}} could not be verified
            and your registration was not approved. You may submit a new receipt to re-enter review,
            or contact the organizers for help.</p>
        </div>
        <div class="footer">&copy; {{.Year}} Taakra Events</div>
    </div>
</body>
</html>`
