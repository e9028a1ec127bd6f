package broker

import "strings"

// TopicName joins the deployment prefix and an event topic ("mesaya" + "bookings.created").
func TopicName(prefix, eventTopic string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	eventTopic = strings.TrimSpace(eventTopic)
	if prefix == "" {
		return eventTopic
	}
	return prefix + "." + eventTopic
}

// TopicNames applies TopicName to each event topic.
func TopicNames(prefix string, eventTopics []string) []string {
	names := make([]string, 0, len(eventTopics))
	for _, topic := range eventTopics {
		if strings.TrimSpace(topic) == "" {
			continue
		}
		names = append(names, TopicName(prefix, topic))
	}
	return names
}

func inferEntityActionFromTopic(topic string) (string, string) {
	parts := strings.Split(topic, ".")
	if len(parts) >= 2 {
		entity := strings.TrimSpace(parts[len(parts)-2])
		action := strings.TrimSpace(parts[len(parts)-1])
		if entity != "" && action != "" {
			return entity, action
		}
	}
	if entity := normalizeTopic(topic); entity != "" {
		return entity, "unknown"
	}
	return "", "unknown"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func normalizeTopic(topic string) string {
	if idx := strings.LastIndex(topic, "."); idx >= 0 {
		topic = topic[idx+1:]
	}
	return strings.TrimSpace(topic)
}
